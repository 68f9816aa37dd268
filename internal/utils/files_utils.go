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
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// TableSelection is one entry of a --select flag: a table and the columns
// picked from it, in the order written.
type TableSelection struct {
	Table   string
	Columns []string
}

// ParseListFlag splits a comma-separated flag value, dropping blanks.
func ParseListFlag(value string) []string {
	var items []string
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			items = append(items, trimmed)
		}
	}
	return items
}

// ParseSelectFlag parses "table1[col1,col2],table2,table3[col4]". Order is
// preserved; a table without brackets contributes no columns.
func ParseSelectFlag(selectFlag string) ([]TableSelection, error) {
	var selections []TableSelection
	if strings.TrimSpace(selectFlag) == "" {
		return selections, nil
	}

	// strip any whitespace
	selectFlag = strings.Join(strings.Fields(selectFlag), "")

	for _, part := range SplitOutsideBrackets(selectFlag) {
		if part == "" {
			continue
		}

		bracketStart := strings.Index(part, "[")
		if bracketStart == -1 {
			if strings.Contains(part, "]") {
				return nil, fmt.Errorf("unexpected closing bracket in: %s", part)
			}
			selections = append(selections, TableSelection{Table: part})
			continue
		}

		bracketEnd := strings.Index(part, "]")
		if bracketEnd == -1 {
			return nil, fmt.Errorf("missing closing bracket in: %s", part)
		}
		if bracketEnd != len(part)-1 {
			return nil, fmt.Errorf("unexpected text after closing bracket in: %s", part)
		}

		tableName := part[:bracketStart]
		if tableName == "" {
			return nil, fmt.Errorf("missing table name in: %s", part)
		}
		selections = append(selections, TableSelection{
			Table:   tableName,
			Columns: ParseListFlag(part[bracketStart+1 : bracketEnd]),
		})
	}

	return selections, nil
}

// FlattenSelections returns the tables and columns of selections in order,
// each column listed once.
func FlattenSelections(selections []TableSelection) (tables []string, columns []string) {
	seen := make(map[string]bool)
	for _, sel := range selections {
		tables = append(tables, sel.Table)
		for _, col := range sel.Columns {
			if !seen[col] {
				seen[col] = true
				columns = append(columns, col)
			}
		}
	}
	return tables, columns
}

// SplitOutsideBrackets Helper function to split string by commas that are not within brackets
func SplitOutsideBrackets(s string) []string {
	var result []string
	var current strings.Builder
	inBrackets := false

	for _, char := range s {
		switch char {
		case '[':
			inBrackets = true
			current.WriteRune(char)
		case ']':
			inBrackets = false
			current.WriteRune(char)
		case ',':
			if inBrackets {
				current.WriteRune(char)
			} else {
				result = append(result, current.String())
				current.Reset()
			}
		default:
			current.WriteRune(char)
		}
	}

	// Add the last part
	if current.Len() > 0 {
		result = append(result, current.String())
	}

	return result
}

// ParseSelection resolves a prompt answer against numbered options. Each
// comma-separated item is either a 1-based index or an option name. The
// result keeps the order typed, without duplicates.
func ParseSelection(input string, options []string) ([]string, error) {
	index := make(map[string]bool, len(options))
	for _, o := range options {
		index[o] = true
	}

	var selected []string
	seen := make(map[string]bool)
	for _, item := range ParseListFlag(input) {
		choice := item
		if n, err := strconv.Atoi(item); err == nil {
			if n < 1 || n > len(options) {
				return nil, fmt.Errorf("selection %d is out of range (1-%d)", n, len(options))
			}
			choice = options[n-1]
		} else if !index[item] {
			return nil, fmt.Errorf("unknown option: %s", item)
		}
		if !seen[choice] {
			seen[choice] = true
			selected = append(selected, choice)
		}
	}
	return selected, nil
}

// PromptLine prints prompt to out and reads one trimmed line from in.
func PromptLine(in *bufio.Reader, out io.Writer, prompt string) (string, error) {
	fmt.Fprint(out, prompt)
	text, err := in.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	return strings.TrimSpace(text), nil
}

// ConfirmAction asks a yes/no question.
func ConfirmAction(in *bufio.Reader, out io.Writer, question string) bool {
	text, err := PromptLine(in, out, question+" (yes/no): ")
	if err != nil {
		return false
	}
	action := strings.ToLower(text)
	return action == "yes" || action == "y"
}

func GetDefaultOutputFilePath(viewName string) string {
	return fmt.Sprintf("%s_preview.csv", viewName)
}
