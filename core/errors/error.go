package terrr

import "errors"

var (
	// ErrWouldBlock は、非ブロッキング操作がすぐに完了できない場合に返されるエラー
	ErrWouldBlock = errors.New("operation would block")

	// ErrConnClosed is returned when the peer closed the connection before
	// anything useful was read.
	ErrConnClosed = errors.New("connection closed by peer")

	// ErrHeaderIncomplete is returned when the peer stopped sending before the
	// header terminator arrived and the header buffer still had room.
	ErrHeaderIncomplete = errors.New("header terminator not received")

	// ErrShortTransfer is returned when fewer bytes than requested could be
	// moved between two descriptors.
	ErrShortTransfer = errors.New("short transfer")

	ErrListenerClosed = errors.New("listener closed")
)
