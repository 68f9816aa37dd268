/*
 * Copyright 2025 Google LLC
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *    https://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */
package utils

import (
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/fatih/color"
)

// RenderTable writes header and rows as aligned columns, header in bold.
func RenderTable(w io.Writer, header []string, rows [][]string) error {
	bold := color.New(color.Bold).SprintFunc()
	widths := columnWidths(header, rows)

	// pad before colouring so escape codes do not count towards the width
	cells := make([]string, len(header))
	for i, h := range header {
		cells[i] = bold(pad(h, widths[i]))
	}
	if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " ")); err != nil {
		return err
	}
	for _, row := range rows {
		cells = cells[:0]
		for i, cell := range row {
			cells = append(cells, pad(cell, widths[i]))
		}
		if _, err := fmt.Fprintln(w, strings.TrimRight(strings.Join(cells, "  "), " ")); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(w, "(%d row(s))\n", len(rows))
	return err
}

func pad(s string, width int) string {
	if n := utf8.RuneCountInString(s); n < width {
		return s + strings.Repeat(" ", width-n)
	}
	return s
}

// RenderList writes items as a numbered list.
func RenderList(w io.Writer, items []string) error {
	for i, item := range items {
		if _, err := fmt.Fprintf(w, "%3d. %s\n", i+1, item); err != nil {
			return err
		}
	}
	return nil
}

func columnWidths(header []string, rows [][]string) []int {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = utf8.RuneCountInString(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if n := utf8.RuneCountInString(cell); i < len(widths) && n > widths[i] {
				widths[i] = n
			}
		}
	}
	return widths
}
