// Package nameid generates the two-word node identifiers the cluster
// orchestrator assigns to each node it provisions (spec §4.1
// ClusterNode.TwoWordID, §4.4). Ids are adjective-animal pairs, chosen
// for readability over a raw uuid when an operator has to read them
// off a terminal during an incident.
package nameid

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

var adjectives = []string{
	"amber", "brisk", "calm", "dusty", "eager", "fleet", "gentle", "hardy",
	"iron", "jolly", "keen", "lucid", "mild", "nimble", "olive", "plain",
	"quiet", "rapid", "sturdy", "tidy", "umber", "vivid", "warm", "yellow",
}

var animals = []string{
	"badger", "crane", "dolphin", "egret", "falcon", "gecko", "heron",
	"ibis", "jaguar", "koala", "lemur", "marten", "newt", "otter", "panda",
	"quail", "raven", "seal", "tapir", "urchin", "vole", "walrus", "yak",
}

// Generate returns a two-word id not present in existing, retrying
// with fresh randomness on collision. A failure of the crypto/rand
// reader is returned as an error.
func Generate(existing map[string]bool) (string, error) {
	for attempt := 0; attempt < 100; attempt++ {
		candidate, err := one()
		if err != nil {
			return "", err
		}
		if !existing[candidate] {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("nameid: exhausted %d attempts without finding a free id", 100)
}

func one() (string, error) {
	adj, err := pick(adjectives)
	if err != nil {
		return "", err
	}
	animal, err := pick(animals)
	if err != nil {
		return "", err
	}
	return adj + "-" + animal, nil
}

func pick(words []string) (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(int64(len(words))))
	if err != nil {
		return "", fmt.Errorf("nameid: reading randomness: %w", err)
	}
	return words[n.Int64()], nil
}
