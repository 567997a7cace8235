// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package main

import (
	"encoding/hex"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// entry is a single key/value pair of an input file. Input files are YAML
// sequences of such pairs:
//
//	- key: 0x0102
//	  value: hello
type entry struct {
	Key   string `yaml:"key"`
	Value string `yaml:"value"`
}

// readEntries parses the key/value pairs of the given input file.
func readEntries(path string) ([][2][]byte, error) {
	var entries []entry
	if err := readYaml(path, &entries); err != nil {
		return nil, err
	}
	res := make([][2][]byte, 0, len(entries))
	for i, cur := range entries {
		key, err := parseBytes(cur.Key)
		if err != nil {
			return nil, fmt.Errorf("invalid key of entry %d: %w", i, err)
		}
		value, err := parseBytes(cur.Value)
		if err != nil {
			return nil, fmt.Errorf("invalid value of entry %d: %w", i, err)
		}
		res = append(res, [2][]byte{key, value})
	}
	return res, nil
}

// readItems parses an input file listing the items of an ordered list as a
// YAML sequence.
func readItems(path string) ([][]byte, error) {
	var items []string
	if err := readYaml(path, &items); err != nil {
		return nil, err
	}
	res := make([][]byte, 0, len(items))
	for i, cur := range items {
		item, err := parseBytes(cur)
		if err != nil {
			return nil, fmt.Errorf("invalid item %d: %w", i, err)
		}
		res = append(res, item)
	}
	return res, nil
}

func readYaml(path string, out any) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// parseBytes interprets 0x-prefixed strings as hex and everything else as the
// raw bytes of the string.
func parseBytes(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "0x") {
		return []byte(s), nil
	}
	return hex.DecodeString(s[2:])
}
