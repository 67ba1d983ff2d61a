package cuj

import "errors"

// Capture holds the original text of a file between a modify step and its
// paired revert. Ownership is single-use: a second Set without an
// intervening Take is refused so a modify can never silently overwrite the
// content its revert still needs.
type Capture struct {
	text []byte
	held bool
}

// Set stores the original text. It fails if a previous capture has not been
// reverted yet.
func (c *Capture) Set(text []byte) error {
	if c.held {
		return errors.New("captured original text not yet reverted; refusing to overwrite")
	}

	c.text = append([]byte(nil), text...)
	c.held = true

	return nil
}

// Take returns the captured text and releases the capture for reuse.
func (c *Capture) Take() ([]byte, error) {
	if !c.held {
		return nil, errors.New("no captured original text; modify was never applied")
	}

	text := c.text
	c.text = nil
	c.held = false

	return text, nil
}

// Held reports whether original text is currently captured.
func (c *Capture) Held() bool {
	return c.held
}
