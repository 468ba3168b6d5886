package service

import "errors"

var (
	// ErrClientClosed indicates the client has been closed.
	ErrClientClosed = errors.New("segalloc: client is closed")

	// ErrSessionNotFound indicates an unknown or evicted session id.
	ErrSessionNotFound = errors.New("session not found")

	// ErrEmptyContent indicates an upload or session without file content.
	ErrEmptyContent = errors.New("no file content provided")

	// ErrTooLarge indicates an upload above the configured size limit.
	ErrTooLarge = errors.New("file exceeds upload limit")

	// ErrUnknownFormat indicates a report format other than json or yaml.
	ErrUnknownFormat = errors.New("unknown report format")
)
