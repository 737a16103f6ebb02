package logparser_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/svnchurn/svnchurn/internal/errs"
	"github.com/svnchurn/svnchurn/internal/logparser"
	"github.com/svnchurn/svnchurn/internal/model"
)

const sampleXML = `<?xml version="1.0" encoding="UTF-8"?>
<log>
<logentry revision="9">
<author>alice</author>
<date>2024-01-02T00:00:00.000000Z</date>
<paths>
<path kind="file" action="M">/trunk/foo.go</path>
</paths>
<msg>fix foo</msg>
</logentry>
<logentry revision="7">
<author></author>
<date>2024-01-01T00:00:00.000000Z</date>
<paths>
<path kind="file" action="A" copyfrom-path="/trunk/bar.go" copyfrom-rev="5">/trunk/baz.go</path>
<path kind="file" action="D">/trunk/bar.go</path>
</paths>
<msg>rename bar to baz</msg>
</logentry>
<logentry revision="8">
<paths>
</paths>
<msg>revprop only</msg>
</logentry>
</log>
`

func TestParse_SortsAscendingByRevision(t *testing.T) {
	commits, err := logparser.Parse([]byte(sampleXML))
	require.NoError(t, err)
	require.Len(t, commits, 3)
	assert.Equal(t, 7, commits[0].Revision)
	assert.Equal(t, 8, commits[1].Revision)
	assert.Equal(t, 9, commits[2].Revision)
}

func TestParse_EmptyAuthorBecomesUnknown(t *testing.T) {
	commits, err := logparser.Parse([]byte(sampleXML))
	require.NoError(t, err)
	assert.Equal(t, model.UnknownAuthor, commits[0].Author)
}

func TestParse_EmptyPathsIsLegal(t *testing.T) {
	commits, err := logparser.Parse([]byte(sampleXML))
	require.NoError(t, err)
	assert.Empty(t, commits[1].ChangedPaths)
}

func TestParse_CopyFromAttributes(t *testing.T) {
	commits, err := logparser.Parse([]byte(sampleXML))
	require.NoError(t, err)
	rev7 := commits[0]
	require.Len(t, rev7.ChangedPaths, 2)

	var added, deleted model.ChangedPath
	for _, p := range rev7.ChangedPaths {
		switch p.Action {
		case model.ActionAdd:
			added = p
		case model.ActionDelete:
			deleted = p
		}
	}
	assert.Equal(t, "/trunk/baz.go", added.Path)
	assert.True(t, added.HasCopyFrom())
	assert.Equal(t, "/trunk/bar.go", added.CopyFromPath)
	assert.Equal(t, 5, added.CopyFromRev)
	assert.Equal(t, "/trunk/bar.go", deleted.Path)
	assert.False(t, deleted.HasCopyFrom())
}

func TestParse_MalformedXMLIsFatal(t *testing.T) {
	_, err := logparser.Parse([]byte("<log><logentry"))
	require.Error(t, err)
	kind, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindParse, kind)
}

func TestParse_InvalidRevisionAttribute(t *testing.T) {
	_, err := logparser.Parse([]byte(`<log><logentry revision="NaN"><msg>x</msg></logentry></log>`))
	require.Error(t, err)
	kind, ok := errs.As(err)
	require.True(t, ok)
	assert.Equal(t, errs.KindParse, kind)
}

func TestParse_DirKindMarksKindDir(t *testing.T) {
	xml := `<log><logentry revision="1"><author>bob</author><paths>
<path kind="dir" action="A">/trunk/newdir</path>
</paths><msg>add dir</msg></logentry></log>`
	commits, err := logparser.Parse([]byte(xml))
	require.NoError(t, err)
	require.Len(t, commits[0].ChangedPaths, 1)
	assert.Equal(t, model.KindDir, commits[0].ChangedPaths[0].Kind)
}
