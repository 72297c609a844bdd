//go:build linux

package service

import (
	"github.com/ardnew/typecd/typec/dispatch"
	"github.com/ardnew/typecd/typec/uevent"
)

func openUevent(bufferSize int) (dispatch.Receiver, error) {
	ch, err := uevent.Open(bufferSize)
	if err != nil {
		return nil, err
	}
	return ch, nil
}
