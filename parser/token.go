package parser

// TokenType enumerates lexical categories recognised by the tokenizer.
type TokenType int

const (
	tokenEOF TokenType = iota

	tokenVariable
	tokenNumber
	tokenString
	tokenBoolean

	// Keywords
	tokenAnd
	tokenEach
	tokenElse
	tokenFor
	tokenIf
	tokenIn
	tokenMod
	tokenNot
	tokenOr
	tokenProcedure
	tokenRepeat
	tokenReturn
	tokenTimes
	tokenUntil
	tokenBreakpoint

	// Operators
	tokenPlus         // +
	tokenMinus        // -
	tokenStar         // *
	tokenSlash        // /
	tokenEqual        // =
	tokenNotEqual     // !=
	tokenGreater      // >
	tokenLess         // <
	tokenGreaterEqual // >=
	tokenLessEqual    // <=

	// Symbols
	tokenLBrace   // {
	tokenRBrace   // }
	tokenLBracket // [
	tokenRBracket // ]
	tokenLParen   // (
	tokenRParen   // )
	tokenArrow    // <-
	tokenComma    // ,
)

var tokenNames = map[TokenType]string{
	tokenEOF:          "end of input",
	tokenVariable:     "variable",
	tokenNumber:       "number",
	tokenString:       "string",
	tokenBoolean:      "boolean",
	tokenAnd:          "AND",
	tokenEach:         "EACH",
	tokenElse:         "ELSE",
	tokenFor:          "FOR",
	tokenIf:           "IF",
	tokenIn:           "IN",
	tokenMod:          "MOD",
	tokenNot:          "NOT",
	tokenOr:           "OR",
	tokenProcedure:    "PROCEDURE",
	tokenRepeat:       "REPEAT",
	tokenReturn:       "RETURN",
	tokenTimes:        "TIMES",
	tokenUntil:        "UNTIL",
	tokenBreakpoint:   "BREAKPOINT",
	tokenPlus:         "+",
	tokenMinus:        "-",
	tokenStar:         "*",
	tokenSlash:        "/",
	tokenEqual:        "=",
	tokenNotEqual:     "!=",
	tokenGreater:      ">",
	tokenLess:         "<",
	tokenGreaterEqual: ">=",
	tokenLessEqual:    "<=",
	tokenLBrace:       "{",
	tokenRBrace:       "}",
	tokenLBracket:     "[",
	tokenRBracket:     "]",
	tokenLParen:       "(",
	tokenRParen:       ")",
	tokenArrow:        "<-",
	tokenComma:        ",",
}

func (tt TokenType) String() string {
	if name, ok := tokenNames[tt]; ok {
		return name
	}
	return "unknown"
}

// keywords maps reserved words to their token types. MOD, AND and OR are
// keywords that double as binary operators.
var keywords = map[string]TokenType{
	"AND":        tokenAnd,
	"EACH":       tokenEach,
	"ELSE":       tokenElse,
	"FOR":        tokenFor,
	"IF":         tokenIf,
	"IN":         tokenIn,
	"MOD":        tokenMod,
	"NOT":        tokenNot,
	"OR":         tokenOr,
	"PROCEDURE":  tokenProcedure,
	"REPEAT":     tokenRepeat,
	"RETURN":     tokenReturn,
	"TIMES":      tokenTimes,
	"UNTIL":      tokenUntil,
	"BREAKPOINT": tokenBreakpoint,
}

// symbols lists the fixed punctuation and operator spellings, longest first
// so that "<-" and "<=" win over "<".
var symbols = []struct {
	text string
	typ  TokenType
}{
	{"<-", tokenArrow},
	{"!=", tokenNotEqual},
	{">=", tokenGreaterEqual},
	{"<=", tokenLessEqual},
	{"+", tokenPlus},
	{"-", tokenMinus},
	{"*", tokenStar},
	{"/", tokenSlash},
	{"=", tokenEqual},
	{">", tokenGreater},
	{"<", tokenLess},
	{"{", tokenLBrace},
	{"}", tokenRBrace},
	{"[", tokenLBracket},
	{"]", tokenRBracket},
	{"(", tokenLParen},
	{")", tokenRParen},
	{",", tokenComma},
}

// Operator identifies a binary operator in a BinaryExpr.
type Operator string

const (
	OpAdd          Operator = "+"
	OpSub          Operator = "-"
	OpMul          Operator = "*"
	OpDiv          Operator = "/"
	OpMod          Operator = "MOD"
	OpEqual        Operator = "="
	OpNotEqual     Operator = "!="
	OpGreater      Operator = ">"
	OpLess         Operator = "<"
	OpGreaterEqual Operator = ">="
	OpLessEqual    Operator = "<="
	OpAnd          Operator = "AND"
	OpOr           Operator = "OR"
)

var binaryOperators = map[TokenType]Operator{
	tokenPlus:         OpAdd,
	tokenMinus:        OpSub,
	tokenStar:         OpMul,
	tokenSlash:        OpDiv,
	tokenMod:          OpMod,
	tokenEqual:        OpEqual,
	tokenNotEqual:     OpNotEqual,
	tokenGreater:      OpGreater,
	tokenLess:         OpLess,
	tokenGreaterEqual: OpGreaterEqual,
	tokenLessEqual:    OpLessEqual,
	tokenAnd:          OpAnd,
	tokenOr:           OpOr,
}

// Binding precedences. Call and subscript bind tightest; assignment loosest.
const (
	precNone       = 0
	precAssign     = 10
	precOr         = 20
	precAnd        = 30
	precEquality   = 40
	precComparison = 50
	precSum        = 60
	precProduct    = 70
	precPostfix    = 80
)

var precedences = map[TokenType]int{
	tokenArrow:        precAssign,
	tokenOr:           precOr,
	tokenAnd:          precAnd,
	tokenEqual:        precEquality,
	tokenNotEqual:     precEquality,
	tokenGreater:      precComparison,
	tokenLess:         precComparison,
	tokenGreaterEqual: precComparison,
	tokenLessEqual:    precComparison,
	tokenPlus:         precSum,
	tokenMinus:        precSum,
	tokenStar:         precProduct,
	tokenSlash:        precProduct,
	tokenMod:          precProduct,
	tokenLParen:       precPostfix,
	tokenLBracket:     precPostfix,
}

// Token is a single lexical unit produced by the tokenizer.
type Token struct {
	Type   TokenType
	Lexeme string // source text of the token
	Value  any    // decoded literal value for numbers, strings and booleans
	Pos    Position
}

// Name returns the variable name carried by an identifier token.
func (t Token) Name() string {
	if t.Type == tokenVariable {
		return t.Lexeme
	}
	return ""
}

// Kind reports the token category as displayed in diagnostics.
func (t Token) Kind() string {
	return t.Type.String()
}
