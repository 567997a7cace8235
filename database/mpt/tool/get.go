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
	"errors"
	"fmt"

	"github.com/statetrie/statetrie/backend/nodestore/dbconfig"
	"github.com/statetrie/statetrie/common"
	"github.com/statetrie/statetrie/database/mpt"
	"github.com/urfave/cli/v2"
)

var GetCmd = cli.Command{
	Action:    doGet,
	Name:      "get",
	Usage:     "looks up a key in a trie stored in a node store",
	ArgsUsage: "<store-config> <root-hash> <key>",
}

func doGet(context *cli.Context) (err error) {
	if context.Args().Len() != 3 {
		return fmt.Errorf("expected store configuration, root hash, and key")
	}
	root, err := common.HashFromString(context.Args().Get(1))
	if err != nil {
		return fmt.Errorf("invalid root hash: %w", err)
	}
	key, err := parseBytes(context.Args().Get(2))
	if err != nil {
		return fmt.Errorf("invalid key: %w", err)
	}
	log, err := getLog(context)
	if err != nil {
		return err
	}
	defer log.Sync()

	config, err := dbconfig.Load(context.Args().Get(0))
	if err != nil {
		return err
	}
	store, err := dbconfig.Open(config)
	if err != nil {
		return err
	}
	defer func() {
		err = errors.Join(err, store.Close())
	}()

	log.Printf("loading trie %v ...", root)
	trie, err := mpt.LoadTrie(store, root)
	if err != nil {
		return err
	}
	value, found := trie.Get(key)
	if !found {
		return fmt.Errorf("key %x not found", key)
	}
	fmt.Fprintf(context.App.Writer, "0x%x\n", value)
	return nil
}
