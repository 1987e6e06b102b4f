package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMissingItems(t *testing.T) {
	text := "CategoryID,ItemID,Note\n" +
		"10,1,gone\n" +
		" 20 , 7 \r\n" +
		"\n" +
		"30\n" +
		"40,\n" +
		",5\n" +
		"10,2,extra,fields\n"

	set := ParseMissingItems(text)

	assert.Equal(t, []string{"10_1", "10_2", "20_7"}, set.Sorted())
}

func TestParseMissingItems_Empty(t *testing.T) {
	assert.Empty(t, ParseMissingItems(""))
	assert.Empty(t, ParseMissingItems("categoryid,itemid\n"))
}
