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
	"context"
	"fmt"

	"github.com/statetrie/statetrie/common/interrupt"
	"github.com/statetrie/statetrie/database/mpt"
	mptIo "github.com/statetrie/statetrie/database/mpt/io"
	"github.com/urfave/cli/v2"
)

var RootCmd = cli.Command{
	Action:    addPerformanceDiagnoses(computeRoot),
	Name:      "root",
	Usage:     "computes the root hash of the key/value pairs listed in a file",
	ArgsUsage: "<input-file>",
}

func computeRoot(context *cli.Context) error {
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
	fmt.Fprintf(context.App.Writer, "%v\n", trie.Hash())
	return nil
}

// buildTrie inserts all entries of the given input file into a new trie. The
// insertion is aborted on SIGINT or SIGTERM.
func buildTrie(ctx context.Context, log *mptIo.Log, path string) (*mpt.Trie, error) {
	ctx, cancel := interrupt.Register(ctx, func() {
		log.Print("interrupted, stopping insertion")
	})
	defer cancel()

	log.Printf("reading %s ...", path)
	entries, err := readEntries(path)
	if err != nil {
		return nil, err
	}

	log.Printf("inserting %d entries ...", len(entries))
	progress := log.NewProgressTracker("inserted %d entries, %.2f entries/s", 100_000)
	trie := mpt.NewTrie()
	for _, cur := range entries {
		if interrupt.IsCancelled(ctx) {
			return nil, interrupt.ErrCanceled
		}
		if err := trie.Put(cur[0], cur[1]); err != nil {
			return nil, fmt.Errorf("failed to insert key %x: %w", cur[0], err)
		}
		progress.Step(1)
	}
	log.Debugf("inserted %d entries", progress.GetCounter())
	return trie, nil
}
