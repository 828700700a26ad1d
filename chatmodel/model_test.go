package chatmodel_test

import (
	"testing"

	"github.com/effective-security/agenttools/chatmodel"
	"github.com/stretchr/testify/assert"
)

type withContent struct {
	content string
}

func (c withContent) GetContent() string { return c.content }

func Test_Stringify(t *testing.T) {
	assert.Equal(t, "text", chatmodel.Stringify(withContent{content: "text"}))
	assert.Equal(t, `{"a":1}`, chatmodel.Stringify(map[string]int{"a": 1}))

	assert.Equal(t, []byte("text"), chatmodel.ToBytes(withContent{content: "text"}))
	assert.Equal(t, []byte(`{"a":1}`), chatmodel.ToBytes(map[string]int{"a": 1}))
}
