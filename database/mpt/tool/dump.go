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
	"fmt"

	"github.com/urfave/cli/v2"
)

var DumpCmd = cli.Command{
	Action:    dump,
	Name:      "dump",
	Usage:     "prints the node structure of the trie of the key/value pairs listed in a file",
	ArgsUsage: "<input-file>",
}

func dump(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("missing input file")
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
	trie.Dump(context.App.Writer)
	return nil
}
