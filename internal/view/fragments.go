package view

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"fragments/internal/fragments"
	"fragments/internal/mediatype"
)

// FragmentRow is one line of the fragment list.
type FragmentRow struct {
	ID      string
	Type    string
	Class   string
	Label   string
	Size    string
	Created string
	Age     string
	Updated string
	Owner   string
}

// FragmentList is the view-model for the list screen.
type FragmentList struct {
	Rows []FragmentRow
}

// ListOptions tunes list rendering.
type ListOptions struct {
	// Wide adds the updated timestamp and owner columns.
	Wide bool
}

// NewFragmentList orders items newest-created first and precomputes the
// display strings for each row.
func NewFragmentList(items []fragments.Fragment, now time.Time) FragmentList {
	sorted := append([]fragments.Fragment(nil), items...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Created.After(sorted[j].Created)
	})
	rows := make([]FragmentRow, 0, len(sorted))
	for _, f := range sorted {
		rows = append(rows, FragmentRow{
			ID:      f.ID,
			Type:    f.Type,
			Class:   mediatype.DisplayClass(f.Type),
			Label:   ClassLabel(f.Type),
			Size:    FormatSize(f.Size),
			Created: FormatTimestamp(f.Created),
			Age:     FormatAge(f.Created, now),
			Updated: FormatTimestamp(f.Updated),
			Owner:   f.OwnerID,
		})
	}
	return FragmentList{Rows: rows}
}

// RenderFragmentList writes the list as a table.
func RenderFragmentList(w io.Writer, list FragmentList, opts ListOptions) error {
	if len(list.Rows) == 0 {
		_, err := fmt.Fprintln(w, "No fragments found")
		return err
	}
	headers := []string{"ID", "Kind", "Type", "Size", "Created"}
	aligns := []columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft}
	if opts.Wide {
		headers = append(headers, "Updated", "Owner")
		aligns = append(aligns, alignLeft, alignLeft)
	}
	rows := make([][]string, 0, len(list.Rows))
	for _, r := range list.Rows {
		row := []string{r.ID, r.Label, r.Type, r.Size, r.Age}
		if opts.Wide {
			row = append(row, r.Updated, r.Owner)
		}
		rows = append(rows, row)
	}
	_, err := fmt.Fprintln(w, renderTable(headers, rows, aligns))
	return err
}

// FragmentDetail is the view-model for a single fragment.
type FragmentDetail struct {
	Fragment fragments.Fragment
	Class    string
	Label    string
	Content  *fragments.Content
}

// NewFragmentDetail pairs metadata with its (optional) decoded body.
func NewFragmentDetail(fragment fragments.Fragment, content *fragments.Content) FragmentDetail {
	return FragmentDetail{
		Fragment: fragment,
		Class:    mediatype.DisplayClass(fragment.Type),
		Label:    ClassLabel(fragment.Type),
		Content:  content,
	}
}

// RenderFragmentDetail prints metadata rows followed by the content.
func RenderFragmentDetail(w io.Writer, detail FragmentDetail) error {
	f := detail.Fragment
	rows := [][2]string{
		{"ID", f.ID},
		{"Type", f.Type},
		{"Kind", detail.Label},
		{"Size", FormatSize(f.Size)},
		{"Created", FormatTimestamp(f.Created)},
		{"Updated", FormatTimestamp(f.Updated)},
		{"Owner", f.OwnerID},
	}
	var b strings.Builder
	for _, row := range rows {
		fmt.Fprintf(&b, "%-8s %s\n", row[0]+":", row[1])
	}
	if c := detail.Content; c != nil {
		b.WriteString("\n")
		b.WriteString(contentBody(c.Kind, c.Type, c.Text(), c.Size()))
	}
	_, err := io.WriteString(w, b.String())
	return err
}

func contentBody(kind fragments.Kind, contentType, text string, size int) string {
	if kind == fragments.KindBinary {
		return fmt.Sprintf("[%s, %s]\n", mediatype.Normalize(contentType), FormatSize(int64(size)))
	}
	if !strings.HasSuffix(text, "\n") {
		text += "\n"
	}
	return text
}
