package quant

import (
	"bytes"
	"strings"
	"testing"

	"github.com/grailbio/testutil/expect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUniqueClasses(t *testing.T) {
	q := New()
	q.AddTranscript("t1", 1000)
	q.AddTranscript("t2", 500)
	q.AddClass([]string{"t1"}, 30)
	q.AddClass([]string{"t2"}, 10)
	q.Calculate()

	a1, ok := q.Abundance("t1")
	require.True(t, ok)
	a2, ok := q.Abundance("t2")
	require.True(t, ok)
	assert.InDelta(t, 0.75, a1, 1e-9)
	assert.InDelta(t, 0.25, a2, 1e-9)
}

func TestSharedClassSplitsByAbundance(t *testing.T) {
	// t1 has 90 unique reads, t2 has 10. The 100 shared reads must be
	// apportioned toward t1.
	q := New()
	q.AddClass([]string{"t1"}, 90)
	q.AddClass([]string{"t2"}, 10)
	q.AddClass([]string{"t1", "t2"}, 100)
	q.Calculate()

	a1, _ := q.Abundance("t1")
	a2, _ := q.Abundance("t2")
	assert.InDelta(t, 1.0, a1+a2, 1e-9)
	assert.True(t, a1 > 0.8, "a1=%v", a1)
	assert.True(t, a2 < 0.2, "a2=%v", a2)
}

func TestClassDeduplication(t *testing.T) {
	q := New()
	// Same member set in any order and with duplicates is one class.
	q.AddClass([]string{"t2", "t1"}, 5)
	q.AddClass([]string{"t1", "t2", "t1"}, 5)
	expect.EQ(t, len(q.classKeys), 1)
	expect.EQ(t, q.classes[q.classKeys[0]].count, uint64(10))
}

func TestReadClasses(t *testing.T) {
	in := strings.NewReader(
		"# equivalence classes\n" +
			"30\tt1\n" +
			"\n" +
			"10\tt2\n" +
			"100\tt1,t2\n")
	q := New()
	require.NoError(t, q.ReadClasses(in))
	expect.EQ(t, q.NumTranscripts(), 2)
	expect.EQ(t, len(q.classKeys), 3)

	bad := strings.NewReader("xx\tt1\n")
	assert.Error(t, New().ReadClasses(bad))
	assert.Error(t, New().ReadClasses(strings.NewReader("30\n")))
}

func TestReport(t *testing.T) {
	q := New()
	q.AddTranscript("t1", 1000)
	q.AddTranscript("t2", 500)
	q.AddClass([]string{"t1"}, 3)
	q.AddClass([]string{"t2"}, 1)
	q.Calculate()

	var buf bytes.Buffer
	require.NoError(t, q.Report(&buf))
	want := "t1\t1000\t0.750000\n" +
		"t2\t500\t0.250000\n"
	expect.EQ(t, buf.String(), want)
}

func TestCalculateDeterminism(t *testing.T) {
	run := func() string {
		q := New()
		q.AddClass([]string{"a", "b"}, 7)
		q.AddClass([]string{"b", "c"}, 11)
		q.AddClass([]string{"a"}, 3)
		q.AddClass([]string{"c"}, 5)
		q.Calculate()
		var buf bytes.Buffer
		require.NoError(t, q.Report(&buf))
		return buf.String()
	}
	first := run()
	for i := 0; i < 5; i++ {
		expect.EQ(t, run(), first)
	}
}

func TestEmpty(t *testing.T) {
	q := New()
	q.Calculate()
	_, ok := q.Abundance("missing")
	assert.False(t, ok)
	var buf bytes.Buffer
	require.NoError(t, q.Report(&buf))
	expect.EQ(t, buf.String(), "")
}
