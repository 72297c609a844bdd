//go:build !linux

package service

import (
	"github.com/ardnew/typecd/pkg"
	"github.com/ardnew/typecd/typec/dispatch"
)

func openUevent(int) (dispatch.Receiver, error) {
	return nil, pkg.ErrNotSupported
}
