package extract

import (
	"archive/zip"
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/mtakahara/docdiff/pkg/models"
)

// OOXMLExtractor pulls text out of Office Open XML containers. The
// container is a zip archive; the members carrying visible text depend
// on the document kind.
type OOXMLExtractor struct {
	kind models.FileKind
}

// NewOOXMLExtractor creates an extractor for the given OOXML kind.
func NewOOXMLExtractor(kind models.FileKind) *OOXMLExtractor {
	return &OOXMLExtractor{kind: kind}
}

// Name returns the strategy name.
func (e *OOXMLExtractor) Name() string {
	return fmt.Sprintf("ooxml-%s", e.kind)
}

// Extract opens the zip container and concatenates the character data
// of every text-bearing member. Members are visited in name order so
// the result is deterministic regardless of archive layout.
func (e *OOXMLExtractor) Extract(ctx context.Context, r io.ReaderAt, size int64) (string, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return "", fmt.Errorf("open container: %w", err)
	}

	var targets []*zip.File
	for _, member := range zr.File {
		if e.textMember(member.Name) {
			targets = append(targets, member)
		}
	}
	if len(targets) == 0 {
		return "", fmt.Errorf("no text members found in %s container", e.kind)
	}
	sort.Slice(targets, func(i, j int) bool { return targets[i].Name < targets[j].Name })

	var sb strings.Builder
	for _, member := range targets {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if err := appendMemberText(member, &sb); err != nil {
			return "", fmt.Errorf("read member %s: %w", member.Name, err)
		}
	}
	return sb.String(), nil
}

// textMember reports whether the archive member carries document text
// for this kind.
func (e *OOXMLExtractor) textMember(name string) bool {
	switch e.kind {
	case models.KindWordDocument:
		return name == "word/document.xml" ||
			strings.HasPrefix(name, "word/header") ||
			strings.HasPrefix(name, "word/footer")
	case models.KindSpreadsheet:
		return name == "xl/sharedStrings.xml" ||
			strings.HasPrefix(name, "xl/worksheets/")
	case models.KindPresentation:
		return strings.HasPrefix(name, "ppt/slides/slide") &&
			strings.HasSuffix(name, ".xml")
	}
	return false
}

// appendMemberText streams the member's XML and collects its character
// data. Element names are ignored on purpose: formatting and layout
// markup must not influence the extracted content.
func appendMemberText(member *zip.File, sb *strings.Builder) error {
	rc, err := member.Open()
	if err != nil {
		return err
	}
	defer rc.Close()

	decoder := xml.NewDecoder(rc)
	for {
		tok, err := decoder.Token()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
		if cd, ok := tok.(xml.CharData); ok {
			sb.Write(cd)
			sb.WriteByte(' ')
		}
	}
}
