package token

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestKindStringKnownAndUnknown(t *testing.T) {
	require.Equal(t, "if", IF.String())
	require.Equal(t, ":=", DEFINE.String())
	require.Equal(t, "Kind(-1)", Kind(-1).String())
}

func TestKeywordsMapCoversReservedWords(t *testing.T) {
	for word, kind := range map[string]Kind{
		"if": IF, "else": ELSE, "fn": FN, "while": WHILE, "for": FOR,
		"match": MATCH, "try": TRY, "catch": CATCH, "return": RETURN,
		"break": BREAK, "continue": CONTINUE,
	} {
		require.Equal(t, kind, Keywords[word])
	}
	_, ok := Keywords["notakeyword"]
	require.False(t, ok)
}

func TestTokenStringFormatsKindLexemeAndPosition(t *testing.T) {
	tok := Token{Kind: NAME, Lexeme: "x", Line: 2, Col: 5}
	require.Equal(t, `NAME("x")@2:5`, tok.String())
}
