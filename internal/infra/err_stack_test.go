package infra

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path"
	"runtime"
	"strconv"
	"testing"

	"github.com/stretchr/testify/require"
)

var initPC = caller()

func caller() Frame {
	var PCs [3]uintptr
	n := runtime.Callers(2, PCs[:])
	frames := runtime.CallersFrames(PCs[:n])
	frame, _ := frames.Next()
	return Frame(frame.PC)
}

func TestFrameFormat(t *testing.T) {
	fn := runtime.FuncForPC(initPC.pc())
	require.NotNil(t, fn)
	file, line := fn.FileLine(initPC.pc())
	wantLine := strconv.Itoa(line)

	testcases := []struct {
		Frame
		format string
		want   string
	}{
		{initPC, "%s", path.Base(file)},
		{initPC, "%+s", fn.Name() + "\n\t" + file},
		{initPC, "%n", "init"},
		{initPC, "%d", wantLine},
		{initPC, "%v", path.Base(file) + ":" + wantLine},
		{initPC, "%+v", fn.Name() + "\n\t" + file + ":" + wantLine},
		{Frame(0), "%s", "unknownFile"},
		{Frame(0), "%n", "unknownFunc"},
		{Frame(0), "%d", "0"},
	}

	for _, tc := range testcases {
		frameRes := fmt.Sprintf(tc.format, tc.Frame)
		require.Equal(t, tc.want, frameRes)
	}
}

func TestFrameMarshalText(t *testing.T) {
	fn := runtime.FuncForPC(initPC.pc())
	require.NotNil(t, fn)
	file, line := fn.FileLine(initPC.pc())
	want := fn.Name() + " " + file + ":" + strconv.Itoa(line)

	testcases := []struct {
		Frame
		expected []byte
	}{
		{initPC, []byte(want)},
		{Frame(0), []byte("unknownFrame")},
	}
	for _, tc := range testcases {
		_bytes, err := tc.Frame.MarshalText()
		require.NoError(t, err)
		require.Greater(t, len(_bytes), 0)
		require.True(t, bytes.Equal(_bytes, tc.expected))
	}
}

func TestFrameMarshalJSON(t *testing.T) {
	fn := runtime.FuncForPC(initPC.pc())
	require.NotNil(t, fn)
	file, line := fn.FileLine(initPC.pc())
	want := fmt.Sprintf(`{"func":"%s","fileAndLine":"%s:%d"}`, fn.Name(), file, line)

	testcases := []struct {
		Frame
		expected []byte
	}{
		{initPC, []byte(want)},
		{Frame(0), []byte(`{"frame":"unknownFrame"}`)},
	}
	for _, tc := range testcases {
		_bytes, err := json.Marshal(tc.Frame)
		require.NoError(t, err)
		require.Greater(t, len(_bytes), 0)
		require.True(t, bytes.Equal(_bytes, tc.expected))
	}
}
