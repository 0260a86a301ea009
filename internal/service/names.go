// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Strixun

package service

import (
	"encoding/binary"
	"fmt"

	"github.com/strixun/edge-core/internal/crypto"
)

// Word lists for generated display names ("CoolPanda42"). Customers can
// rename later; the generated name only has to be friendly and unique
// enough for a first login.
var (
	nameAdjectives = []string{
		"Cool", "Swift", "Brave", "Calm", "Clever", "Eager", "Fancy", "Gentle",
		"Happy", "Jolly", "Keen", "Lively", "Mighty", "Noble", "Proud", "Quick",
		"Quiet", "Rapid", "Sunny", "Tidy", "Vivid", "Witty", "Zesty", "Bold",
	}
	nameAnimals = []string{
		"Panda", "Otter", "Falcon", "Badger", "Lynx", "Heron", "Marten", "Raven",
		"Gecko", "Bison", "Crane", "Dingo", "Ferret", "Ibex", "Jackal", "Koala",
		"Lemur", "Moose", "Newt", "Osprey", "Puffin", "Quokka", "Stoat", "Walrus",
	}
)

// GenerateDisplayName builds a random Adjective+Animal+NN name from the
// OS CSPRNG.
func GenerateDisplayName() (string, error) {
	buf, err := crypto.RandomBytes(6)
	if err != nil {
		return "", err
	}

	adj := nameAdjectives[binary.BigEndian.Uint16(buf[0:2])%uint16(len(nameAdjectives))]
	animal := nameAnimals[binary.BigEndian.Uint16(buf[2:4])%uint16(len(nameAnimals))]
	number := binary.BigEndian.Uint16(buf[4:6]) % 100

	return fmt.Sprintf("%s%s%d", adj, animal, number), nil
}
