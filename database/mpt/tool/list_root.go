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

	"github.com/statetrie/statetrie/database/mpt"
	"github.com/urfave/cli/v2"
)

var ListRootCmd = cli.Command{
	Action:    listRoot,
	Name:      "list-root",
	Usage:     "computes the root hash of the ordered list of items in a file",
	ArgsUsage: "<items-file>",
}

func listRoot(context *cli.Context) error {
	if context.Args().Len() != 1 {
		return fmt.Errorf("missing items file")
	}
	items, err := readItems(context.Args().Get(0))
	if err != nil {
		return err
	}
	root, err := mpt.DeriveListRoot(items)
	if err != nil {
		return err
	}
	fmt.Fprintf(context.App.Writer, "%v\n", root)
	return nil
}
