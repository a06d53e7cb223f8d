package dataload

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

type parser func(string) (any, error)

type column struct {
	header   string
	name     string
	required bool
	parse    parser
}

type table struct {
	file    string
	name    string
	columns []column
}

// tables is in load order; parents come before the rows that reference them.
var tables = []table{
	{file: "users", name: "users", columns: []column{
		{header: "id", name: "id", required: true, parse: integer},
		{header: "username", name: "username", required: true, parse: text},
		{header: "email", name: "email", required: true, parse: text},
		{header: "role", name: "role", parse: text},
		{header: "bio", name: "bio", parse: text},
		{header: "first_name", name: "first_name", parse: text},
		{header: "last_name", name: "last_name", parse: text},
	}},
	{file: "category", name: "categories", columns: []column{
		{header: "id", name: "id", required: true, parse: integer},
		{header: "name", name: "name", required: true, parse: text},
		{header: "slug", name: "slug", required: true, parse: text},
	}},
	{file: "genre", name: "genres", columns: []column{
		{header: "id", name: "id", required: true, parse: integer},
		{header: "name", name: "name", required: true, parse: text},
		{header: "slug", name: "slug", required: true, parse: text},
	}},
	{file: "titles", name: "titles", columns: []column{
		{header: "id", name: "id", required: true, parse: integer},
		{header: "name", name: "name", required: true, parse: text},
		{header: "year", name: "year", required: true, parse: integer},
		{header: "description", name: "description", parse: nullableText},
		{header: "category", name: "category_id", parse: nullableInteger},
	}},
	{file: "genre_title", name: "title_genres", columns: []column{
		{header: "id", name: "id", required: true, parse: integer},
		{header: "title_id", name: "title_id", required: true, parse: integer},
		{header: "genre_id", name: "genre_id", required: true, parse: integer},
	}},
	{file: "review", name: "reviews", columns: []column{
		{header: "id", name: "id", required: true, parse: integer},
		{header: "title_id", name: "title_id", required: true, parse: integer},
		{header: "text", name: "text", required: true, parse: text},
		{header: "author", name: "author_id", required: true, parse: integer},
		{header: "score", name: "score", required: true, parse: integer},
		{header: "pub_date", name: "pub_date", parse: timestamp},
	}},
	{file: "comments", name: "comments", columns: []column{
		{header: "id", name: "id", required: true, parse: integer},
		{header: "review_id", name: "review_id", required: true, parse: integer},
		{header: "text", name: "text", required: true, parse: text},
		{header: "author", name: "author_id", required: true, parse: integer},
		{header: "pub_date", name: "pub_date", parse: timestamp},
	}},
}

// batch is one table's rows ready for COPY.
type batch struct {
	table   string
	columns []string
	rows    [][]any
}

// convert maps raw records onto the table's columns. Columns the file lacks are left
// to their database defaults; blank lines are skipped.
func (t table) convert(records [][]string) (batch, error) {
	b := batch{table: t.name}
	if len(records) == 0 {
		return b, fmt.Errorf("%s: empty file", t.file)
	}

	index := make(map[string]int, len(records[0]))
	for i, h := range records[0] {
		index[strings.ToLower(strings.TrimSpace(h))] = i
	}

	var present []column
	var positions []int
	for _, c := range t.columns {
		pos, ok := index[c.header]
		if !ok {
			if c.required {
				return b, fmt.Errorf("%s: missing column %q", t.file, c.header)
			}
			continue
		}
		present = append(present, c)
		positions = append(positions, pos)
		b.columns = append(b.columns, c.name)
	}

	for line, record := range records[1:] {
		if blank(record) {
			continue
		}
		row := make([]any, len(present))
		for i, c := range present {
			var raw string
			if positions[i] < len(record) {
				raw = strings.TrimSpace(record[positions[i]])
			}
			v, err := c.parse(raw)
			if err != nil {
				return b, fmt.Errorf("%s line %d column %s: %w", t.file, line+2, c.header, err)
			}
			row[i] = v
		}
		b.rows = append(b.rows, row)
	}

	return b, nil
}

func blank(record []string) bool {
	for _, v := range record {
		if strings.TrimSpace(v) != "" {
			return false
		}
	}
	return true
}

func text(s string) (any, error) { return s, nil }

func nullableText(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	return s, nil
}

func integer(s string) (any, error) {
	if s == "" {
		return nil, fmt.Errorf("value is required")
	}
	return strconv.ParseInt(s, 10, 64)
}

func nullableInteger(s string) (any, error) {
	if s == "" {
		return nil, nil
	}
	return strconv.ParseInt(s, 10, 64)
}

// timestamp accepts RFC 3339 with optional fraction; blank means now.
func timestamp(s string) (any, error) {
	if s == "" {
		return time.Now().UTC(), nil
	}
	return time.Parse(time.RFC3339Nano, s)
}
