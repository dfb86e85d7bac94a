// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package reverts

import (
	"errors"
)

// ErrRevert is a domain rejection raised by a built-in contract. The call that raised it
// must leave no state behind. A revert may refine a parent revert, in which case
// errors.Is matches both.
type ErrRevert struct {
	message string
	parent  *ErrRevert
}

func New(message string) *ErrRevert {
	return &ErrRevert{
		message: message,
	}
}

// Refine creates a revert that is also reported as its parent by errors.Is.
func Refine(parent *ErrRevert, message string) *ErrRevert {
	return &ErrRevert{
		message: message,
		parent:  parent,
	}
}

func (e *ErrRevert) Error() string {
	return e.message
}

// Is reports whether target is e or one of its parents.
func (e *ErrRevert) Is(target error) bool {
	t, ok := target.(*ErrRevert)
	if !ok {
		return false
	}
	for r := e; r != nil; r = r.parent {
		if r == t {
			return true
		}
	}
	return false
}

func IsRevertErr(err any) bool {
	if err == nil {
		return false
	}
	e, ok := err.(error)
	if !ok {
		return false
	}
	var ve *ErrRevert
	return errors.As(e, &ve)
}
