package obj

import (
	"slices"
	"strconv"
	"strings"

	"github.com/s16arch/s16/internal"
)

// Pair associates a memory address with the index of the source
// listing line that produced it.
type Pair struct {
	Address uint16
	Index   int
}

const eltsPerLine = 4

// Metadata records the address-to-source mapping and the listing
// lines of an assembled module. Listing lines come in three parallel
// forms: the raw source, a plain formatted listing line, and a
// decorated listing line for display.
type Metadata struct {
	Pairs        []Pair
	mapArr       map[uint16]int
	ListingText  []string
	ListingPlain []string
	ListingDec   []string
}

func NewMetadata() *Metadata {
	return &Metadata{mapArr: map[uint16]int{}}
}

func (md *Metadata) Clear() {
	md.Pairs = nil
	md.mapArr = map[uint16]int{}
	md.ListingText = nil
	md.ListingPlain = nil
	md.ListingDec = nil
}

// AddPairs appends address mappings from another module.
func (md *Metadata) AddPairs(ps []Pair) {
	for _, p := range ps {
		md.mapArr[p.Address] = p.Index
		md.Pairs = append(md.Pairs, p)
	}
}

// TranslateMap shifts every address by adrOffset and every source
// index by srcOffset, as required when the linker places a module.
func (md *Metadata) TranslateMap(adrOffset uint16, srcOffset int) {
	xs := make([]Pair, 0, len(md.Pairs))
	md.mapArr = map[uint16]int{}
	for _, x := range md.Pairs {
		p := Pair{Address: x.Address + adrOffset, Index: x.Index + srcOffset}
		xs = append(xs, p)
		md.mapArr[p.Address] = p.Index
	}
	md.Pairs = xs
}

func (md *Metadata) AddMapping(a uint16, i int) {
	md.Pairs = append(md.Pairs, Pair{Address: a, Index: i})
	md.mapArr[a] = i
}

// PushSrc appends one listing line triple.
func (md *Metadata) PushSrc(srcText, srcPlain, srcDec string) {
	md.ListingText = append(md.ListingText, srcText)
	md.ListingPlain = append(md.ListingPlain, srcPlain)
	md.ListingDec = append(md.ListingDec, srcDec)
}

// UnshiftSrc prepends one listing line triple.
func (md *Metadata) UnshiftSrc(srcText, srcPlain, srcDec string) {
	md.ListingText = append([]string{srcText}, md.ListingText...)
	md.ListingPlain = append([]string{srcPlain}, md.ListingPlain...)
	md.ListingDec = append([]string{srcDec}, md.ListingDec...)
}

// AddSrcLines appends listing lines stored as flattened triples.
func (md *Metadata) AddSrcLines(xs []string) {
	for i := 0; i+2 < len(xs); i += 3 {
		md.PushSrc(xs[i], xs[i+1], xs[i+2])
	}
}

// SrcIdx returns the source line index mapped to address a, or 0.
func (md *Metadata) SrcIdx(a uint16) int {
	return md.mapArr[a]
}

// SrcPlain returns the plain listing line for address a.
func (md *Metadata) SrcPlain(a uint16) string {
	i := md.SrcIdx(a)
	if i < len(md.ListingPlain) {
		return md.ListingPlain[i]
	}
	return ""
}

// PlainLines returns the plain listing.
func (md *Metadata) PlainLines() []string {
	return append([]string(nil), md.ListingPlain...)
}

// SrcLines flattens the listing triples.
func (md *Metadata) SrcLines() []string {
	xs := make([]string, 0, 3*len(md.ListingPlain))
	for i := range md.ListingPlain {
		xs = append(xs, md.ListingText[i], md.ListingPlain[i], md.ListingDec[i])
	}
	return xs
}

// mapToTexts renders the address map as comma-separated numbers,
// four per line.
func (md *Metadata) mapToTexts() []string {
	xs := make([]string, 0, 2*len(md.Pairs))
	for _, p := range md.Pairs {
		xs = append(xs, strconv.Itoa(int(p.Address)), strconv.Itoa(p.Index))
	}
	var ys []string
	for len(xs) > 0 {
		n := min(eltsPerLine, len(xs))
		ys = append(ys, strings.Join(xs[:n], ","))
		xs = xs[n:]
	}
	return ys
}

// ToText serializes the metadata: the address map, a "source"
// separator, then the listing triples.
func (md *Metadata) ToText() string {
	lines := internal.Concat(
		slices.Values(md.mapToTexts()),
		internal.Single("source"),
		slices.Values(md.SrcLines()),
	)
	return strings.Join(slices.Collect(lines), "\n")
}

// FromText parses serialized metadata text.
func (md *Metadata) FromText(x string) {
	md.Clear()
	xs := strings.Split(x, "\n")
	var ns []int
	i := 0
	for i < len(xs) && !strings.HasPrefix(xs[i], "source") {
		for _, q := range strings.Split(xs[i], ",") {
			q = strings.TrimSpace(q)
			if q == "" {
				continue
			}
			n, err := strconv.Atoi(q)
			if err != nil {
				continue
			}
			ns = append(ns, n)
		}
		i++
	}
	for j := 0; j+1 < len(ns); j += 2 {
		md.AddMapping(uint16(ns[j]), ns[j+1])
	}
	i++ // skip the separator
	for i < len(xs) {
		if xs[i] == "" {
			i++
			continue
		}
		if i+2 < len(xs) {
			md.PushSrc(xs[i], xs[i+1], xs[i+2])
		} else if i+1 < len(xs) {
			md.PushSrc(xs[i], xs[i+1], "")
		} else {
			md.PushSrc(xs[i], "", "")
		}
		i += 3
	}
}
