package main

// repeat-builder scans a reference FASTA for repeated substrings and writes a
// repeat catalogue:
//
//	<prefix>.rep.fa    repeat sequences, concatenated under a single header
//	<prefix>.rep.info  per-repeat coordinate lists
//
// plus optional diagnostic dumps and a repeat-masked copy of the reference.
//
// Example:
//
//	repeat-builder -min-length 100 -min-count 5 -o out genome.fa

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/grailbio/base/compress"
	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/file"
	"github.com/grailbio/base/grail"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/vcontext"
	"github.com/klauspost/compress/gzip"

	"github.com/Tosino2020/hisat2/repeat"
)

type builderFlags struct {
	outPrefix   string
	bothStrands bool
	maskOutput  bool
	gzipMask    bool
	rangeDump   bool
	altDump     bool
}

// fastaSeq is one raw input record.
type fastaSeq struct {
	name string
	seq  []byte
}

func readFASTA(ctx context.Context, path string) []fastaSeq {
	in, err := file.Open(ctx, path)
	if err != nil {
		log.Panicf("open %v: %v", path, err)
	}
	var r io.Reader = in.Reader(ctx)
	if u := compress.NewReaderPath(r, in.Name()); u != nil {
		r = u
	}
	var (
		seqs []fastaSeq
		cur  *fastaSeq
	)
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 1024*1024), 1024*1024)
	for sc.Scan() {
		line := sc.Bytes()
		if len(line) == 0 {
			continue
		}
		if line[0] == '>' {
			name := string(line[1:])
			if i := strings.IndexAny(name, " \t"); i >= 0 {
				name = name[:i]
			}
			seqs = append(seqs, fastaSeq{name: name})
			cur = &seqs[len(seqs)-1]
			continue
		}
		if cur == nil {
			log.Panicf("%s: sequence data before the first FASTA header", path)
		}
		cur.seq = append(cur.seq, line...)
	}
	if sc.Err() != nil {
		log.Panicf("read %v: %v", path, sc.Err())
	}
	if err := in.Close(ctx); err != nil {
		log.Panicf("close %v: %v", path, err)
	}
	log.Printf("Read %d sequences from %s", len(seqs), path)
	return seqs
}

func isACGT(c byte) bool {
	switch c {
	case 'A', 'C', 'G', 'T', 'a', 'c', 'g', 't':
		return true
	}
	return false
}

// joinSequences concatenates the ACGT runs of all input sequences into one
// text. Runs of other characters are excised; each maximal ACGT run becomes
// one fragment. Sequences without any ACGT base are dropped.
func joinSequences(seqs []fastaSeq) (repeat.EncodedText, []repeat.FragmentDescriptor, []string) {
	var (
		joined strings.Builder
		descs  []repeat.FragmentDescriptor
		names  []string
	)
	for _, s := range seqs {
		first := true
		i := 0
		for i < len(s.seq) {
			if !isACGT(s.seq[i]) {
				i++
				continue
			}
			j := i
			for j < len(s.seq) && isACGT(s.seq[j]) {
				j++
			}
			descs = append(descs, repeat.FragmentDescriptor{
				Start:      joined.Len(),
				Length:     j - i,
				StartInSeq: i,
				First:      first,
			})
			joined.Write(s.seq[i:j])
			first = false
			i = j
		}
		if first {
			log.Printf("%s: no usable bases, skipping", s.name)
			continue
		}
		names = append(names, s.name)
	}
	return repeat.NewEncodedText(joined.String()), descs, names
}

// suffixPositions sorts all suffix start positions of text, the empty suffix
// included, in lexicographic suffix order.
func suffixPositions(text repeat.Text) []int {
	n := text.Len()
	positions := make([]int, n+1)
	for i := range positions {
		positions[i] = i
	}
	sort.Slice(positions, func(a, b int) bool {
		pa, pb := positions[a], positions[b]
		for pa < n && pb < n {
			ba, bb := text.Base(pa), text.Base(pb)
			if ba != bb {
				return ba < bb
			}
			pa++
			pb++
		}
		return pa == n && pb != n
	})
	return positions
}

func createFile(ctx context.Context, path string) (io.Writer, func()) {
	out, err := file.Create(ctx, path)
	if err != nil {
		log.Panicf("create %v: %v", path, err)
	}
	w := bufio.NewWriter(out.Writer(ctx))
	cleanup := func() {
		er := errors.Once{}
		er.Set(w.Flush())
		er.Set(out.Close(ctx))
		if er.Err() != nil {
			log.Panicf("close %v: %v", path, er.Err())
		}
	}
	return w, cleanup
}

func runBuilder(text repeat.Text, idx *repeat.FragmentIndex, strand repeat.Strand, opts repeat.Opts) *repeat.Builder {
	b, err := repeat.NewBuilder(text, idx, strand, opts)
	if err != nil {
		log.Fatalf("builder: %v", err)
	}
	log.Printf("Sorting %d suffixes (%v strand)", text.Len()+1, strandName(strand))
	stream := repeat.NewSliceStream(suffixPositions(text))
	if err := b.Build(stream); err != nil {
		log.Fatalf("build: %v", err)
	}
	return b
}

func strandName(s repeat.Strand) string {
	if s == repeat.Reverse {
		return "reverse"
	}
	return "forward"
}

func writeArtifacts(ctx context.Context, prefix string, b *repeat.Builder, idx *repeat.FragmentIndex, textLen int, flags builderFlags) {
	groups := b.Groups()

	out, cleanup := createFile(ctx, prefix+".rep.fa")
	if err := repeat.WriteSequence(out, groups); err != nil {
		log.Fatalf("%s.rep.fa: %v", prefix, err)
	}
	cleanup()

	out, cleanup = createFile(ctx, prefix+".rep.info")
	if err := repeat.WritePositions(out, groups, idx); err != nil {
		log.Fatalf("%s.rep.info: %v", prefix, err)
	}
	cleanup()

	if flags.rangeDump {
		out, cleanup = createFile(ctx, prefix+".ranges.tsv")
		if err := repeat.WriteRangeDump(out, groups, textLen); err != nil {
			log.Fatalf("%s.ranges.tsv: %v", prefix, err)
		}
		cleanup()
	}
	if flags.altDump {
		out, cleanup = createFile(ctx, prefix+".alts.tsv")
		if err := repeat.WriteAlternates(out, groups); err != nil {
			log.Fatalf("%s.alts.tsv: %v", prefix, err)
		}
		cleanup()
	}
	log.Printf("Stats (%s strand): %+v", strandName(b.Strand()), b.Stats())
}

// writeMasked writes a copy of the input FASTA with every joined-text
// position masked to N by the builders replaced by N in sequence space.
// Positions outside any fragment are passed through unchanged.
func writeMasked(ctx context.Context, path string, seqs []fastaSeq, masked repeat.Text,
	descs []repeat.FragmentDescriptor, names []string, gzipOut bool) {
	bySeq := map[string][]repeat.FragmentDescriptor{}
	seqID := -1
	for _, d := range descs {
		if d.First {
			seqID++
		}
		bySeq[names[seqID]] = append(bySeq[names[seqID]], d)
	}

	out, err := file.Create(ctx, path)
	if err != nil {
		log.Panicf("create %v: %v", path, err)
	}
	var w io.Writer = out.Writer(ctx)
	var gz *gzip.Writer
	if gzipOut {
		gz = gzip.NewWriter(w)
		w = gz
	}
	bw := bufio.NewWriter(w)

	er := errors.Once{}
	for _, s := range seqs {
		_, err := fmt.Fprintf(bw, ">%s\n", s.name)
		er.Set(err)
		line := append([]byte(nil), s.seq...)
		for _, d := range bySeq[s.name] {
			for i := 0; i < d.Length; i++ {
				if masked.Base(d.Start+i) == repeat.BaseN {
					line[d.StartInSeq+i] = 'N'
				}
			}
		}
		for i := 0; i < len(line); i += 60 {
			end := i + 60
			if end > len(line) {
				end = len(line)
			}
			_, err := bw.Write(line[i:end])
			er.Set(err)
			er.Set(bw.WriteByte('\n'))
		}
	}
	er.Set(bw.Flush())
	if gz != nil {
		er.Set(gz.Close())
	}
	er.Set(out.Close(ctx))
	if er.Err() != nil {
		log.Panicf("write %v: %v", path, er.Err())
	}
	log.Printf("Wrote masked reference to %s", path)
}

func usage() {
	fmt.Fprintln(os.Stderr, `
repeat-builder scans a reference FASTA for repeated substrings and writes a
repeat catalogue.

Usage:
  repeat-builder [flags] /path/to/reference.fa

Outputs (under -o <prefix>):
  <prefix>.rep.fa       repeat sequences
  <prefix>.rep.info     repeat coordinates
  <prefix>.ranges.tsv   occurrence ranges (-range-dump)
  <prefix>.alts.tsv     approximate-match alternates (-alt-dump)
  <prefix>.masked.fa    masked reference (-mask-output)

With -both-strands the reverse-complement catalogue is written under
<prefix>.rev.* alongside the forward one.`)
	os.Exit(2)
}

func main() {
	flag.Usage = usage

	opts := repeat.DefaultOpts
	flags := builderFlags{}
	flag.IntVar(&opts.MinLength, "min-length", repeat.DefaultOpts.MinLength, "Minimum repeat length.")
	flag.IntVar(&opts.MinCount, "min-count", repeat.DefaultOpts.MinCount, "Minimum number of occurrences of a repeat.")
	flag.IntVar(&opts.MaxEdit, "max-edit", repeat.DefaultOpts.MaxEdit, "Maximum edit distance when grouping similar repeats.")
	flag.BoolVar(&opts.Grouping, "grouping", repeat.DefaultOpts.Grouping, "Group repeats within -max-edit of each other.")
	flag.StringVar(&flags.outPrefix, "o", "repeat", "Output path prefix.")
	flag.BoolVar(&flags.bothStrands, "both-strands", false, "Also catalogue the reverse-complement strand.")
	flag.BoolVar(&flags.maskOutput, "mask-output", false, "Write a copy of the reference with repeats masked to N.")
	flag.BoolVar(&flags.gzipMask, "gzip-mask", false, "Gzip the masked reference.")
	flag.BoolVar(&flags.rangeDump, "range-dump", false, "Dump occurrence ranges with reverse-complement coordinates.")
	flag.BoolVar(&flags.altDump, "alt-dump", false, "Dump per-group alternate sequences.")

	cleanup := grail.Init()
	defer cleanup()
	ctx := vcontext.Background()

	if flag.NArg() != 1 {
		log.Fatal("exactly one argument (the reference FASTA) is required")
	}
	seqs := readFASTA(ctx, flag.Arg(0))
	text, descs, names := joinSequences(seqs)
	idx, err := repeat.NewFragmentIndex(descs, names, text.Len())
	if err != nil {
		log.Fatalf("fragment table: %v", err)
	}
	log.Printf("Joined text: %d bases in %d fragments across %d sequences",
		text.Len(), idx.NumFragments(), len(names))

	fb := runBuilder(text, idx, repeat.Forward, opts)
	writeArtifacts(ctx, flags.outPrefix, fb, idx, text.Len(), flags)

	var rb *repeat.Builder
	if flags.bothStrands {
		rc := repeat.ReverseComplement(text)
		rb = runBuilder(rc, idx, repeat.Reverse, opts)
		writeArtifacts(ctx, flags.outPrefix+".rev", rb, idx, text.Len(), flags)
	}

	if flags.maskOutput {
		masked := append(repeat.EncodedText(nil), text...)
		repeat.Mask(masked, fb.Groups())
		if rb != nil {
			// Reverse groups address the reverse-complement text; Mask mirrors
			// them back onto the forward text.
			repeat.Mask(masked, rb.Groups())
		}
		path := flags.outPrefix + ".masked.fa"
		if flags.gzipMask {
			path += ".gz"
		}
		writeMasked(ctx, path, seqs, masked, descs, names, flags.gzipMask)
	}
	log.Printf("All done")
}
