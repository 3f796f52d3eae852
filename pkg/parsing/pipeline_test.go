package parsing_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sylva-dev/sylva/pkg/ast"
	"github.com/sylva-dev/sylva/pkg/parsing"
)

type rawItem struct {
	Text string
}

type itemNode struct {
	ast.BaseNode

	Text string
}

type listNode struct {
	ast.BaseNode

	Items []*itemNode
}

// fakeParser is a first stage producing one raw item per comma-separated
// token. An input of "!" fails structurally; "?" produces issues but no root.
type fakeParser struct{}

func (fakeParser) ParseFirstStage(_ context.Context, code string) (*parsing.FirstStageResult[[]rawItem], error) {
	if code == "!" {
		return nil, errors.New("front end broke")
	}

	result := &parsing.FirstStageResult[[]rawItem]{Code: code, Duration: time.Microsecond}

	if code == "?" {
		result.Issues = append(result.Issues, parsing.SyntacticIssue("unreadable input", nil))

		return result, nil
	}

	for _, token := range strings.Split(code, ",") {
		result.Root = append(result.Root, rawItem{Text: strings.TrimSpace(token)})
	}

	result.HasRoot = true

	return result, nil
}

func buildList(_ context.Context, first *parsing.FirstStageResult[[]rawItem], issues *[]parsing.Issue) (*listNode, error) {
	list := &listNode{}

	for _, raw := range first.Root {
		if raw.Text == "" {
			*issues = append(*issues, parsing.TranslationIssue(parsing.SeverityWarning, "empty item skipped", nil))

			continue
		}

		list.Items = append(list.Items, &itemNode{Text: raw.Text})
	}

	return list, nil
}

func TestPipelineBuildsAndAssignsParents(t *testing.T) {
	t.Parallel()

	pipeline := parsing.NewPipeline[[]rawItem, *listNode](fakeParser{}, buildList)

	result, err := pipeline.Parse(context.Background(), "a, b")
	require.NoError(t, err)

	require.NotNil(t, result.Root)
	require.Len(t, result.Root.Items, 2)
	assert.Equal(t, "a", result.Root.Items[0].Text)

	// Parent links are assigned after the second stage.
	assert.Same(t, result.Root, result.Root.Items[0].Parent().(*listNode))

	assert.True(t, result.Correct())
	assert.Positive(t, result.TotalTime)
	assert.Equal(t, time.Microsecond, result.FirstStageTime)
}

func TestPipelineToleratesMissingRoot(t *testing.T) {
	t.Parallel()

	pipeline := parsing.NewPipeline[[]rawItem, *listNode](fakeParser{}, buildList)

	result, err := pipeline.Parse(context.Background(), "?")
	require.NoError(t, err)

	assert.Nil(t, result.Root)
	require.Len(t, result.Issues, 1)
	assert.False(t, result.Correct())
}

func TestPipelineFirstStageFailure(t *testing.T) {
	t.Parallel()

	pipeline := parsing.NewPipeline[[]rawItem, *listNode](fakeParser{}, buildList)

	_, err := pipeline.Parse(context.Background(), "!")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "first stage")
}

func TestPipelineAccumulatesBuilderIssues(t *testing.T) {
	t.Parallel()

	pipeline := parsing.NewPipeline[[]rawItem, *listNode](fakeParser{}, buildList)

	result, err := pipeline.Parse(context.Background(), "a,,b")
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, parsing.SeverityWarning, result.Issues[0].Severity)
	assert.True(t, result.Correct())
}

func TestPipelinePostProcessors(t *testing.T) {
	t.Parallel()

	pipeline := parsing.NewPipeline[[]rawItem, *listNode](fakeParser{}, buildList).
		WithPostProcessor(func(root *listNode, issues *[]parsing.Issue) {
			if len(root.Items) > 2 {
				*issues = append(*issues, parsing.TranslationIssue(parsing.SeverityInfo, "large list", nil))
			}
		})

	result, err := pipeline.Parse(context.Background(), "a,b,c")
	require.NoError(t, err)

	require.Len(t, result.Issues, 1)
	assert.Equal(t, "large list", result.Issues[0].Message)
}

func TestIssueString(t *testing.T) {
	t.Parallel()

	issue := parsing.SyntacticIssue("unexpected token", ast.NewPosition(1, 2, 1, 1, 3, 2))

	assert.Equal(t, "error syntactic at 1:2-1:3: unexpected token", issue.String())

	bare := parsing.TranslationIssue(parsing.SeverityInfo, "note", nil)
	assert.Equal(t, "info translation: note", bare.String())
}

func TestHasErrors(t *testing.T) {
	t.Parallel()

	assert.False(t, parsing.HasErrors(nil))
	assert.False(t, parsing.HasErrors([]parsing.Issue{
		parsing.TranslationIssue(parsing.SeverityWarning, "w", nil),
	}))
	assert.True(t, parsing.HasErrors([]parsing.Issue{
		parsing.TranslationIssue(parsing.SeverityWarning, "w", nil),
		parsing.SyntacticIssue("e", nil),
	}))
}
