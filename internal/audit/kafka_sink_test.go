package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKafkaSinkTopicSelection(t *testing.T) {
	sink := NewKafkaSink(nil, "")
	assert.Equal(t, DefaultTopic, sink.topic)

	custom := NewKafkaSink(nil, "acme.audit")
	assert.Equal(t, "acme.audit", custom.topic)
}
