package ruc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func analyze(t *testing.T, src string) (*AnalysisResult, *CollectingSink) {
	t.Helper()
	sink := NewCollectingSink()
	res, err := Analyze([]byte(src), "test.ruc", "", nil, sink)
	require.NoError(t, err, "Analyze should only fail on a broken source reader")
	require.NotNil(t, res)
	return res, sink
}

func TestAnalyzeMinimalMainValidates(t *testing.T) {
	res, sink := analyze(t, `
void main() {
	int x;
	x = 1 + 2;
	return;
}
`)
	assert.False(t, sink.HasErrors())
	assert.True(t, res.HadMain)
	assert.NoError(t, res.Tree.Validate())
}

func TestAnalyzeMissingMainReports(t *testing.T) {
	_, sink := analyze(t, `
void helper() {
	return;
}
`)
	require.True(t, sink.HasErrors())
	assert.Equal(t, ErrParseMissingMain, sink.Diagnostics[len(sink.Diagnostics)-1].Kind)
}

func TestAnalyzeUndeclaredIdentReports(t *testing.T) {
	_, sink := analyze(t, `
void main() {
	y = 1;
	return;
}
`)
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.Diagnostics {
		if d.Kind == ErrParseUndeclared {
			found = true
		}
	}
	assert.True(t, found, "assigning to an undeclared identifier should be diagnosed")
}

func TestAnalyzeRedeclarationInSameScopeReports(t *testing.T) {
	_, sink := analyze(t, `
void main() {
	int x;
	int x;
	return;
}
`)
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.Diagnostics {
		if d.Kind == ErrParseRedeclaration {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyzeGotoUndefinedLabelReports(t *testing.T) {
	_, sink := analyze(t, `
void main() {
	goto nowhere;
	return;
}
`)
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.Diagnostics {
		if d.Kind == ErrParseLabelUndefined {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyzeGotoDefinedLabelIsClean(t *testing.T) {
	res, sink := analyze(t, `
void main() {
	goto done;
done:
	return;
}
`)
	assert.False(t, sink.HasErrors())
	assert.NoError(t, res.Tree.Validate())
}

func TestAnalyzeIfElseAndLoopsValidate(t *testing.T) {
	res, sink := analyze(t, `
void main() {
	int i;
	i = 0;
	while (i < 10) {
		if (i == 5) {
			break;
		} else {
			i = i + 1;
		}
	}
	for (i = 0; i < 3; i = i + 1) {
		continue;
	}
	return;
}
`)
	assert.False(t, sink.HasErrors())
	assert.NoError(t, res.Tree.Validate())
}

func TestAnalyzeBreakOutsideLoopReports(t *testing.T) {
	_, sink := analyze(t, `
void main() {
	break;
	return;
}
`)
	require.True(t, sink.HasErrors())
	assert.Equal(t, ErrParseBreakOutsideLoop, sink.Diagnostics[0].Kind)
}

func TestAnalyzeCaseOutsideSwitchReports(t *testing.T) {
	_, sink := analyze(t, `
void main() {
	case 1:
		return;
}
`)
	require.True(t, sink.HasErrors())
	found := false
	for _, d := range sink.Diagnostics {
		if d.Kind == ErrParseCaseOutsideSwitch {
			found = true
		}
	}
	assert.True(t, found)
}

func TestAnalyzeSwitchWithCasesValidates(t *testing.T) {
	res, sink := analyze(t, `
void main() {
	int x;
	x = 2;
	switch (x) {
	case 1:
		break;
	case 2:
		break;
	default:
		break;
	}
	return;
}
`)
	assert.False(t, sink.HasErrors())
	assert.NoError(t, res.Tree.Validate())
}

func TestAnalyzeFunctionCallAndArgs(t *testing.T) {
	res, sink := analyze(t, `
int add(int a, int b) {
	return a + b;
}

void main() {
	int r;
	r = add(1, 2);
	return;
}
`)
	assert.False(t, sink.HasErrors())
	assert.NoError(t, res.Tree.Validate())
	_, ok := res.Idents.Resolve(res.Reprs.internString("add"))
	assert.True(t, ok)
}

func TestAnalyzePointerAddrAndDeref(t *testing.T) {
	res, sink := analyze(t, `
void main() {
	int x;
	int *p;
	x = 1;
	p = &x;
	x = *p;
	return;
}
`)
	assert.False(t, sink.HasErrors())
	assert.NoError(t, res.Tree.Validate())
}

func TestAnalyzeStructDeclAndFieldAccess(t *testing.T) {
	res, sink := analyze(t, `
struct Point {
	int x;
	int y;
};

void main() {
	struct Point p;
	p.x = 1;
	p.y = 2;
	return;
}
`)
	assert.False(t, sink.HasErrors())
	assert.NoError(t, res.Tree.Validate())
}

func TestAnalyzeArraySliceAccess(t *testing.T) {
	res, sink := analyze(t, `
void main() {
	int a[10];
	a[0] = 1;
	a[1] = a[0] + 1;
	return;
}
`)
	assert.False(t, sink.HasErrors())
	assert.NoError(t, res.Tree.Validate())
}

func TestAnalyzeCompoundAssignOnBareIdent(t *testing.T) {
	res, sink := analyze(t, `
void main() {
	int x;
	x = 1;
	x += 2;
	x -= 1;
	return;
}
`)
	assert.False(t, sink.HasErrors())
	assert.NoError(t, res.Tree.Validate())
}

func TestAnalyzeCompoundAssignOnNonIdentReports(t *testing.T) {
	_, sink := analyze(t, `
void main() {
	int a[10];
	a[0] += 1;
	return;
}
`)
	require.True(t, sink.HasErrors())
}

func TestAnalyzeImplicitIntToFloatWidening(t *testing.T) {
	res, sink := analyze(t, `
void main() {
	float f;
	int i;
	i = 2;
	f = 1.5 + i;
	return;
}
`)
	assert.False(t, sink.HasErrors())
	assert.NoError(t, res.Tree.Validate())
}

func TestAnalyzeTernaryExpression(t *testing.T) {
	res, sink := analyze(t, `
void main() {
	int x;
	int y;
	x = 1;
	y = x > 0 ? 1 : 0;
	return;
}
`)
	assert.False(t, sink.HasErrors())
	assert.NoError(t, res.Tree.Validate())
}

func TestAnalyzeThreadBlockValidates(t *testing.T) {
	res, sink := analyze(t, `
void main() {
	thread {
		int x;
		x = 1;
	}
	return;
}
`)
	assert.False(t, sink.HasErrors())
	assert.NoError(t, res.Tree.Validate())
}

func TestAnalyzeReturnTypeMismatchReports(t *testing.T) {
	_, sink := analyze(t, `
int give() {
	return;
}

void main() {
	return;
}
`)
	require.True(t, sink.HasErrors())
}

func TestAnalyzeRecoversAfterErrorAndKeepsParsing(t *testing.T) {
	_, sink := analyze(t, `
void main() {
	int x;
	x = ;
	x = 5;
	return;
}
`)
	require.True(t, sink.HasErrors())
	// Token-level resync should let parsing reach the rest of the
	// function and report only the one broken statement, not cascade
	// into spurious follow-on diagnostics.
	errCount := 0
	for _, d := range sink.Diagnostics {
		if d.Severity == SeverityError {
			errCount++
		}
	}
	assert.Equal(t, 1, errCount)
}

func TestAnalyzeArrayDeclarationReservesItsFullWordCount(t *testing.T) {
	res, sink := analyze(t, `
int a[10];
int b;

void main() {
	return;
}
`)
	assert.False(t, sink.HasErrors())
	assert.NoError(t, res.Tree.Validate())

	aIdx, ok := res.Idents.Resolve(res.Reprs.internString("a"))
	require.True(t, ok)
	bIdx, ok := res.Idents.Resolve(res.Reprs.internString("b"))
	require.True(t, ok)

	aDisp := res.Idents.Entry(aIdx).Displacement
	bDisp := res.Idents.Entry(bIdx).Displacement
	assert.Equal(t, 10, aDisp-bDisp, "b must be allocated past all ten of a's elements, not just one")
}

func TestAnalyzeArrayInitializerEmitsDeclarr(t *testing.T) {
	res, sink := analyze(t, `
void main() {
	int a[2] = {1,2};
	return;
}
`)
	assert.False(t, sink.HasErrors())
	assert.NoError(t, res.Tree.Validate())

	var got []int
	for i := 0; i < res.Tree.Len(); i++ {
		got = append(got, res.Tree.At(i))
	}

	// Start past TFuncdef and its ident-ref/body-offset arguments: the
	// body offset here is 3, the same integer as TDeclarr.
	declarrAt := -1
	for i := 3; i < len(got); i++ {
		if Tag(got[i]) == TDeclarr {
			declarrAt = i
			break
		}
	}
	require.NotEqual(t, -1, declarrAt, "array declarator with an initializer must emit TDeclarr")

	i := declarrAt
	require.Equal(t, TDeclarr, Tag(got[i]))
	i++
	require.Equal(t, 1, got[i], "one array dimension")
	i++
	require.Equal(t, TConst, Tag(got[i]))
	i++
	require.Equal(t, 2, got[i], "declared size of a is 2")
	i++
	require.Equal(t, TExprend, Tag(got[i]))
	i++
	require.Equal(t, TDeclid, Tag(got[i]))
	i += 7 // ident-ref, elem-mode, dim, all, usual, proc-flag, user-flag
	require.Equal(t, TBeginit, Tag(got[i]))
	i++
	require.Equal(t, 2, got[i], "two initializer elements")
	i++
	require.Equal(t, TConst, Tag(got[i]))
	i++
	require.Equal(t, 1, got[i])
	i++
	require.Equal(t, TExprend, Tag(got[i]))
	i++
	require.Equal(t, TConst, Tag(got[i]))
	i++
	require.Equal(t, 2, got[i])
	i++
	require.Equal(t, TExprend, Tag(got[i]))
}
