/*
Copyright IBM Corp. All Rights Reserved.

SPDX-License-Identifier: Apache-2.0
*/

package workflow

import "github.com/pkg/errors"

// Operation names one step of the channel configuration workflow.
type Operation string

const (
	OperationCreate                  Operation = "create"
	OperationFetch                   Operation = "fetch"
	OperationComputeUpdate           Operation = "compute_update"
	OperationSignUpdate              Operation = "sign_update"
	OperationSignUpdateOrganizations Operation = "sign_update_organizations"
	OperationApplyUpdate             Operation = "apply_update"
)

// Operations lists every operation in workflow order.
var Operations = []Operation{
	OperationCreate,
	OperationFetch,
	OperationComputeUpdate,
	OperationSignUpdate,
	OperationSignUpdateOrganizations,
	OperationApplyUpdate,
}

// ParseOperation returns the operation called name.
func ParseOperation(name string) (Operation, error) {
	for _, op := range Operations {
		if string(op) == name {
			return op, nil
		}
	}
	return "", errors.Errorf("invalid operation %q", name)
}
