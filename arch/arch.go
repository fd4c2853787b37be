package arch

const (
	MEM_SIZE       = 65536 // number of 16-bit memory locations
	WORDS_PER_LINE = 8     // object code words per data line
)

// Format is an instruction format, which determines how many machine
// words a statement occupies and how its fields are laid out.
type Format int

//go:generate go tool stringer -linecomment -type=Format
const (
	FMT_RRR   = Format(0) // RRR
	FMT_RX    = Format(1) // RX
	FMT_EXP   = Format(2) // EXP
	FMT_DATA  = Format(3) // data
	FMT_DIR   = Format(4) // directive
	FMT_EMPTY = Format(5) // empty
)

// Size returns the number of machine words an instruction of this
// format occupies. Data statements are sized by the assembler.
func (f Format) Size() uint16 {
	switch f {
	case FMT_RRR:
		return 1
	case FMT_RX, FMT_EXP:
		return 2
	default:
		return 0
	}
}

// Operands is an assembly language operand field format. R is a
// general register, C a control register name, X an
// displacement[index] address, K a pc-relative offset, and k a
// constant field.
type Operands int

//go:generate go tool stringer -linecomment -type=Operands
const (
	A_NONE      = Operands(0)  // resume
	A_X         = Operands(1)  // jump loop[R0]
	A_KX        = Operands(2)  // jumpc0 3,next[R0]
	A_RX        = Operands(3)  // load R1,xyz[R2]
	A_R         = Operands(4)  // timeron R1
	A_R_OFFSET  = Operands(5)  // brz R1,loop
	A_RK        = Operands(6)  // invb R1,13
	A_RC        = Operands(7)  // putctl R1,status
	A_RKK       = Operands(8)  // invf R1,3,12
	A_RK_OFFSET = Operands(9)  // brc0 R2,4,loop
	A_RR        = Operands(10) // cmp R1,R2
	A_RRK       = Operands(11) // shiftl R1,R2,5
	A_RRKK      = Operands(12) // andf R1,R2,4,7
	A_RRKKK     = Operands(13) // logicf R1,R2,4,7,1
	A_RRX       = Operands(14) // save R4,R7,5[R13]
	A_RRR       = Operands(15) // add R1,R2,R3
	A_DATA      = Operands(16) // data
	A_MODULE    = Operands(17) // module
	A_IMPORT    = Operands(18) // import
	A_EXPORT    = Operands(19) // export
	A_RESERVE   = Operands(20) // reserve
	A_ORG       = Operands(21) // org
	A_EQU       = Operands(22) // equ
	A_END       = Operands(23) // end
)

// Spec describes how one mnemonic is assembled: the machine format,
// the operand field format, and the expanding opcode path. The path
// begins with the primary opcode; escape opcodes add a secondary
// opcode, and pseudo instructions may append a baked-in constant
// field.
type Spec struct {
	Format   Format
	Operands Operands
	Opcode   []uint16
	Pseudo   bool
}

// Empty is the operation of a statement with no operation field.
var Empty = &Spec{Format: FMT_EMPTY, Operands: A_NONE}

// Statements maps each mnemonic, pseudo-mnemonic, and directive to
// its specification. Primary opcodes 0-12 are RRR instructions;
// 14 and 15 escape to the EXP and RX formats.
var Statements = map[string]*Spec{
	"add":  {FMT_RRR, A_RRR, []uint16{0}, false},
	"sub":  {FMT_RRR, A_RRR, []uint16{1}, false},
	"mul":  {FMT_RRR, A_RRR, []uint16{2}, false},
	"div":  {FMT_RRR, A_RRR, []uint16{3}, false},
	"cmp":  {FMT_RRR, A_RR, []uint16{4}, false},
	"addc": {FMT_RRR, A_RRR, []uint16{5}, false},
	"muln": {FMT_RRR, A_RRR, []uint16{6}, false},
	"divn": {FMT_RRR, A_RRR, []uint16{7}, false},
	"rrr1": {FMT_RRR, A_RRR, []uint16{8}, false},
	"rrr2": {FMT_RRR, A_RRR, []uint16{9}, false},
	"rrr3": {FMT_RRR, A_RRR, []uint16{10}, false},
	"rrr4": {FMT_RRR, A_RRR, []uint16{11}, false},
	"trap": {FMT_RRR, A_RRR, []uint16{12}, false},

	"lea":     {FMT_RX, A_RX, []uint16{15, 0}, false},
	"load":    {FMT_RX, A_RX, []uint16{15, 1}, false},
	"store":   {FMT_RX, A_RX, []uint16{15, 2}, false},
	"jump":    {FMT_RX, A_X, []uint16{15, 3}, false},
	"jumpc0":  {FMT_RX, A_KX, []uint16{15, 4}, false},
	"jumpc1":  {FMT_RX, A_KX, []uint16{15, 5}, false},
	"jal":     {FMT_RX, A_RX, []uint16{15, 6}, false},
	"jumpz":   {FMT_RX, A_RX, []uint16{15, 7}, false},
	"jumpnz":  {FMT_RX, A_RX, []uint16{15, 8}, false},
	"testset": {FMT_RX, A_RX, []uint16{15, 9}, false},

	"logicf":   {FMT_EXP, A_RRKKK, []uint16{14, 0}, false},
	"logicb":   {FMT_EXP, A_RRKKK, []uint16{14, 1}, false},
	"shiftl":   {FMT_EXP, A_RRK, []uint16{14, 3}, false},
	"shiftr":   {FMT_EXP, A_RRK, []uint16{14, 4}, false},
	"extract":  {FMT_EXP, A_RRKKK, []uint16{14, 5}, false},
	"extracti": {FMT_EXP, A_RRKKK, []uint16{14, 6}, false},
	"push":     {FMT_EXP, A_RRR, []uint16{14, 7}, false},
	"pop":      {FMT_EXP, A_RRR, []uint16{14, 8}, false},
	"top":      {FMT_EXP, A_RRR, []uint16{14, 9}, false},
	"save":     {FMT_EXP, A_RRX, []uint16{14, 10}, false},
	"restore":  {FMT_EXP, A_RRX, []uint16{14, 11}, false},
	"brc0":     {FMT_EXP, A_RK_OFFSET, []uint16{14, 12}, false},
	"brc1":     {FMT_EXP, A_RK_OFFSET, []uint16{14, 13}, false},
	"brz":      {FMT_EXP, A_R_OFFSET, []uint16{14, 14}, false},
	"brnz":     {FMT_EXP, A_R_OFFSET, []uint16{14, 15}, false},
	"dispatch": {FMT_EXP, A_RK, []uint16{14, 16}, false},
	"getctl":   {FMT_EXP, A_RC, []uint16{14, 17}, false},
	"putctl":   {FMT_EXP, A_RC, []uint16{14, 18}, false},
	"resume":   {FMT_EXP, A_NONE, []uint16{14, 19}, false},
	"timeron":  {FMT_EXP, A_R, []uint16{14, 20, 0}, false},
	"timeroff": {FMT_EXP, A_NONE, []uint16{14, 21}, false},
	"add32":    {FMT_EXP, A_RRR, []uint16{14, 22}, false},

	"data":    {FMT_DATA, A_DATA, nil, false},
	"module":  {FMT_DIR, A_MODULE, nil, false},
	"import":  {FMT_DIR, A_IMPORT, nil, false},
	"export":  {FMT_DIR, A_EXPORT, nil, false},
	"reserve": {FMT_DIR, A_RESERVE, nil, false},
	"org":     {FMT_DIR, A_ORG, nil, false},
	"equ":     {FMT_DIR, A_EQU, nil, true},
	"end":     {FMT_DIR, A_END, nil, true},

	// Conditional jumps generating jumpc0, with the cc bit baked in.
	"jumple":  {FMT_RX, A_X, []uint16{15, 4, BIT_CCg}, true},
	"jumpne":  {FMT_RX, A_X, []uint16{15, 4, BIT_CCE}, true},
	"jumpge":  {FMT_RX, A_X, []uint16{15, 4, BIT_CCl}, true},
	"jumpnv":  {FMT_RX, A_X, []uint16{15, 4, BIT_CCv}, true},
	"jumpnco": {FMT_RX, A_X, []uint16{15, 4, BIT_CCC}, true},

	// Conditional jumps generating jumpc1.
	"jumplt": {FMT_RX, A_X, []uint16{15, 5, BIT_CCl}, true},
	"jumpeq": {FMT_RX, A_X, []uint16{15, 5, BIT_CCE}, true},
	"jumpgt": {FMT_RX, A_X, []uint16{15, 5, BIT_CCg}, true},
	"jumpv":  {FMT_RX, A_X, []uint16{15, 5, BIT_CCv}, true},
	"jumpco": {FMT_RX, A_X, []uint16{15, 5, BIT_CCC}, true},

	// Word, field, and bit logic with the truth table function baked in.
	"invw": {FMT_EXP, A_R, []uint16{14, 0, 12}, true},
	"andw": {FMT_EXP, A_RR, []uint16{14, 0, 1}, true},
	"orw":  {FMT_EXP, A_RR, []uint16{14, 0, 7}, true},
	"xorw": {FMT_EXP, A_RR, []uint16{14, 0, 6}, true},
	"invf": {FMT_EXP, A_RKK, []uint16{14, 0, 12}, true},
	"andf": {FMT_EXP, A_RRKK, []uint16{14, 0, 1}, true},
	"orf":  {FMT_EXP, A_RRKK, []uint16{14, 0, 7}, true},
	"xorf": {FMT_EXP, A_RRKK, []uint16{14, 0, 6}, true},

	"invb":   {FMT_EXP, A_RK, []uint16{14, 1, 12}, true},
	"setb":   {FMT_EXP, A_RK, []uint16{14, 1, 15}, true},
	"clearb": {FMT_EXP, A_RK, []uint16{14, 1, 0}, true},
	"andb":   {FMT_EXP, A_RRKK, []uint16{14, 1, 1}, true},
	"orb":    {FMT_EXP, A_RRKK, []uint16{14, 1, 7}, true},
	"xorb":   {FMT_EXP, A_RRKK, []uint16{14, 1, 6}, true},
	"copyb":  {FMT_EXP, A_RRKK, []uint16{14, 1, 5}, true},
	"copybi": {FMT_EXP, A_RRKK, []uint16{14, 1, 10}, true},

	"field": {FMT_EXP, A_RKK, []uint16{14, 5}, true},
}

// MnemonicRRR gives the mnemonic for each primary opcode.
var MnemonicRRR = [16]string{
	"add", "sub", "mul", "div",
	"cmp", "addc", "muln", "divn",
	"rrr1", "rrr2", "rrr3", "rrr4",
	"trap", "EXP3", "EXP", "RX",
}

// MnemonicRX gives the mnemonic for each RX secondary opcode.
var MnemonicRX = [16]string{
	"lea", "load", "store", "jump",
	"jumpc0", "jumpc1", "jal", "jumpz",
	"jumpnz", "testset", "noprx", "noprx",
	"noprx", "noprx", "noprx", "noprx",
}

// MnemonicEXP gives the mnemonic for each EXP secondary opcode.
var MnemonicEXP = []string{
	"logicf", "logicb", "logicu", "shiftl",
	"shiftr", "extract", "extracti", "push",
	"pop", "top", "save", "restore",
	"brc0", "brc1", "brz", "brnz",
	"dispatch", "getctl", "putctl", "resume",
	"timeron", "timeroff", "add32",
}

// CtlReg maps a control register name, as written in getctl and
// putctl operands, to its machine language index.
var CtlReg = map[string]uint16{
	"status":  0,
	"mask":    1,
	"req":     2,
	"istat":   3,
	"ipc":     4,
	"iir":     5,
	"iadr":    6,
	"vect":    7,
	"psegBeg": 8,
	"psegEnd": 9,
	"dsegBeg": 10,
	"dsegEnd": 11,
}

// CtlRegLookup resolves a control register name to its index.
func CtlRegLookup(name string) (uint16, bool) {
	i, ok := CtlReg[name]
	return i, ok
}
