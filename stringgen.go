package main

import (
	"bufio"
	"io"
	"strings"

	"github.com/schollz/progressbar/v3"

	"github.com/lkarlslund/ldapbrute/brute"
)

// candidateSource feeds usernames to the probers
type candidateSource interface {
	Next() bool
	String() string
	Complexity() int64 // -1 if unknown
	Err() error        // why Next stopped early, nil once everything was read
}

type StringGen struct {
	gen *brute.Brute

	prefix, suffix string

	current string
}

func NewStringGen(charset string, min, max int, prefix, suffix string) (*StringGen, error) {
	gen, err := brute.NewFromString(min, max, charset)
	if err != nil {
		return nil, err
	}
	return &StringGen{
		gen:    gen,
		prefix: prefix,
		suffix: suffix,
	}, nil
}

// Complexity is the number of names this generator yields, or -1 if that doesn't fit an int64
func (sg *StringGen) Complexity() int64 {
	total := sg.gen.Total()
	if !total.IsInt64() {
		return -1
	}
	return total.Int64()
}

func (sg *StringGen) Next() bool {
	s, ok := sg.gen.Next()
	if !ok {
		return false
	}
	sg.current = sg.prefix + s + sg.suffix
	return true
}

func (sg *StringGen) String() string {
	return sg.current
}

func (sg *StringGen) Err() error {
	return nil
}

type lineSource struct {
	scanner *bufio.Scanner
	lines   int64
}

// newLineSource reads one name per line. With count set and a seekable input, lines are counted up front so progress can be shown.
func newLineSource(input io.Reader, count bool) (*lineSource, error) {
	ls := lineSource{lines: -1}

	if seeker, ok := input.(io.ReadSeeker); ok && count {
		linescanner := bufio.NewScanner(seeker)
		linescanner.Split(bufio.ScanLines)
		var lines int64
		for linescanner.Scan() {
			lines++
		}
		if err := linescanner.Err(); err != nil {
			return nil, err
		}
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, err
		}
		ls.lines = lines
	}

	ls.scanner = bufio.NewScanner(input)
	ls.scanner.Split(bufio.ScanLines)
	return &ls, nil
}

func (ls *lineSource) Next() bool {
	return ls.scanner.Scan()
}

func (ls *lineSource) String() string {
	return ls.scanner.Text()
}

func (ls *lineSource) Complexity() int64 {
	return ls.lines
}

// Err is set when reading stopped before the end of input, e.g. a line longer than bufio.MaxScanTokenSize
func (ls *lineSource) Err() error {
	return ls.scanner.Err()
}

// validUsername weeds out things AD won't accept as a sAMAccountName
func validUsername(username string) bool {
	return username != "" && !strings.ContainsAny(username, `"/\:;|=,+*?<>`)
}

// queueCandidates sends valid names to inputqueue until the source runs dry or stop is closed, and returns the source's read error
func queueCandidates(source candidateSource, inputqueue chan<- string, stop <-chan struct{}, pb *progressbar.ProgressBar) error {
	var line int64
	for source.Next() {
		if pb != nil && line%500 == 0 {
			pb.Set64(line)
		}
		line++

		username := source.String()
		if !validUsername(username) {
			continue
		}
		select {
		case inputqueue <- username:
		case <-stop:
			return nil
		}
	}
	if pb != nil {
		pb.Set64(line)
	}
	return source.Err()
}
