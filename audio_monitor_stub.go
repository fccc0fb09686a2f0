//go:build headless

package main

func NewOtoMonitor(config AudioConfigFunc) (AudioMonitor, error) {
	return &NullMonitor{}, nil
}
