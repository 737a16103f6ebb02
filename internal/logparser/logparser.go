// Package logparser implements C2: parsing `svn log --xml --verbose` output
// into an ordered slice of model.Commit.
package logparser

import (
	"encoding/xml"
	"fmt"
	"strconv"
	"strings"

	"github.com/svnchurn/svnchurn/internal/errs"
	"github.com/svnchurn/svnchurn/internal/model"
)

type logEntryXML struct {
	Revision string `xml:"revision,attr"`
	Author   string `xml:"author"`
	Date     string `xml:"date"`
	Msg      string `xml:"msg"`
	Paths    struct {
		Path []pathXML `xml:"path"`
	} `xml:"paths"`
}

type pathXML struct {
	Action       string `xml:"action,attr"`
	Kind         string `xml:"kind,attr"`
	CopyFromPath string `xml:"copyfrom-path,attr"`
	CopyFromRev  string `xml:"copyfrom-rev,attr"`
	Value        string `xml:",chardata"`
}

type logXML struct {
	Entries []logEntryXML `xml:"logentry"`
}

// Parse parses the raw XML produced by `svn log --xml --verbose` into
// commits sorted ascending by revision. An empty <paths> block is legal
// (revprop-only commit, spec.md §4.2) and yields a Commit with no
// ChangedPaths.
func Parse(xmlBytes []byte) ([]*model.Commit, error) {
	var doc logXML
	if err := xml.Unmarshal(xmlBytes, &doc); err != nil {
		return nil, errs.New(errs.KindParse, "logparser: Parse", err)
	}

	commits := make([]*model.Commit, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		rev, err := strconv.Atoi(strings.TrimSpace(e.Revision))
		if err != nil {
			return nil, errs.New(errs.KindParse, "logparser: Parse",
				fmt.Errorf("invalid revision %q: %w", e.Revision, err))
		}

		c := model.NewCommit(rev)
		c.Author = strings.TrimSpace(e.Author)
		if c.Author == "" {
			c.Author = model.UnknownAuthor
		}
		c.Date = strings.TrimSpace(e.Date)
		c.Message = e.Msg

		for _, p := range e.Paths.Path {
			cp := model.ChangedPath{
				Path:   strings.TrimSpace(p.Value),
				Action: parseAction(p.Action),
				Kind:   parseKind(p.Kind),
			}
			if p.CopyFromPath != "" {
				cp.CopyFromPath = p.CopyFromPath
				if p.CopyFromRev != "" {
					if n, err := strconv.Atoi(strings.TrimSpace(p.CopyFromRev)); err == nil {
						cp.CopyFromRev = n
					}
				}
			}
			c.ChangedPaths = append(c.ChangedPaths, cp)
		}

		commits = append(commits, c)
	}

	model.SortByRevision(commits)
	return commits, nil
}

func parseAction(raw string) model.Action {
	switch strings.ToUpper(strings.TrimSpace(raw)) {
	case "A":
		return model.ActionAdd
	case "M":
		return model.ActionModify
	case "D":
		return model.ActionDelete
	case "R":
		return model.ActionReplace
	default:
		return model.Action(raw)
	}
}

func parseKind(raw string) model.Kind {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "dir":
		return model.KindDir
	case "file":
		return model.KindFile
	case "":
		return model.KindFile // svn log omits kind for some server versions; default to file
	default:
		return model.KindUnknown
	}
}
