// Copyright (c) 2024 Fantom Foundation
//
// Use of this software is governed by the Business Source License included
// in the LICENSE file and at fantom.foundation/bsl11.
//
// Change Date: 2028-4-16
//
// On the date above, in accordance with the Business Source License, use of
// this software will be governed by the GNU Lesser General Public License v3.

package smt

import "github.com/dexstate/statecommit/common"

const (
	// ErrNodeNotFound is returned by node stores for unknown node hashes.
	ErrNodeNotFound = common.ConstError("node not found")
	// ErrCorruptNode is reported when a stored node can not be decoded or
	// violates the tree's structure.
	ErrCorruptNode = common.ConstError("corrupt node")
	// ErrUnknownRoot is reported when a root is requested whose nodes are not
	// present in the node store.
	ErrUnknownRoot = common.ConstError("unknown root")
	// ErrInvalidProof is reported when a proof can not be decoded.
	ErrInvalidProof = common.ConstError("invalid proof")
)
