//go:build headless

package main

func NewEbitenDisplay(controls *DisplayControls) (DisplayOutput, error) {
	return NewHeadlessDisplay(controls)
}
