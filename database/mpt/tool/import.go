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
	"github.com/urfave/cli/v2"
)

var ImportCmd = cli.Command{
	Action:    addPerformanceDiagnoses(doImport),
	Name:      "import",
	Usage:     "stores the trie of the key/value pairs listed in a file in a node store",
	ArgsUsage: "<input-file> <store-config>",
}

func doImport(context *cli.Context) (err error) {
	if context.Args().Len() != 2 {
		return fmt.Errorf("missing input file or store configuration")
	}
	log, err := getLog(context)
	if err != nil {
		return err
	}
	defer log.Sync()

	trie, err := buildTrie(context.Context, log, context.Args().Get(0))
	if err != nil {
		return err
	}
	if err := trie.Check(); err != nil {
		return fmt.Errorf("constructed trie is invalid: %w", err)
	}

	config, err := dbconfig.Load(context.Args().Get(1))
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

	log.Printf("committing trie to %s store ...", config.Type)
	root, err := trie.Commit(store)
	if err != nil {
		return err
	}
	log.Print("import complete")
	fmt.Fprintf(context.App.Writer, "%v\n", root)
	return nil
}
