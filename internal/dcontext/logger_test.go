package dcontext

import (
	"bytes"
	"context"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
)

func TestWithLoggerIsRetrievedByGetLogger(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.Out = &buf
	entry := base.WithField("component", "test")

	ctx := WithLogger(context.Background(), entry)
	GetLogger(ctx).Info("hello")

	assert.Contains(t, buf.String(), "component=test")
	assert.Contains(t, buf.String(), "hello")
}

func TestGetLoggerWithFieldAddsField(t *testing.T) {
	var buf bytes.Buffer
	base := logrus.New()
	base.Out = &buf
	entry := base.WithField("component", "test")

	ctx := WithLogger(context.Background(), entry)
	GetLoggerWithField(ctx, "destination", "/queue/a").Info("subscribed")

	assert.Contains(t, buf.String(), "destination=")
	assert.Contains(t, buf.String(), "/queue/a")
}

func TestGetLoggerFallsBackToDefault(t *testing.T) {
	logger := GetLogger(context.Background())
	assert.NotNil(t, logger)
}
