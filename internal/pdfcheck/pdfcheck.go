// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package pdfcheck confirms that a downloaded file is a readable PDF. Mirror
// services sometimes answer a document request with an HTML captcha or
// error page and a 200 status.
package pdfcheck

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ledongthuc/pdf"
)

// ErrNotPDF is returned when the file does not start with a PDF header.
var ErrNotPDF = errors.New("not a PDF document")

var magic = []byte("%PDF-")

// Verify opens path as a PDF and returns its page count.
func Verify(path string) (pages int, err error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	head := make([]byte, len(magic))
	if _, err := io.ReadFull(f, head); err != nil || !bytes.Equal(head, magic) {
		return 0, ErrNotPDF
	}

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	// The parser panics on some malformed cross-reference tables.
	defer func() {
		if r := recover(); r != nil {
			pages, err = 0, fmt.Errorf("parsing PDF: %v", r)
		}
	}()

	r, err := pdf.NewReader(f, info.Size())
	if err != nil {
		return 0, fmt.Errorf("parsing PDF: %w", err)
	}
	n := r.NumPage()
	if n < 1 {
		return 0, fmt.Errorf("parsing PDF: no pages")
	}
	return n, nil
}
