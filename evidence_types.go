package evidence

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"time"
)

// Standard type ids
const (
	TypeCall   uint32 = 0x0140
	TypeDevice uint32 = 0x0240
	TypeInfo   uint32 = 0x0241
)

// Call record fields
const (
	FieldChannel    = "channel"
	FieldProgram    = "program"
	FieldSampleRate = "sample_rate"
	FieldIncoming   = "incoming"
	FieldStartTime  = "start_time"
	FieldStopTime   = "stop_time"
	FieldCallee     = "callee"
	FieldCaller     = "caller"
)

const (
	// CallHeaderVersion is the version word opening a call additional header
	CallHeaderVersion uint32 = 2008121901

	// callFixedSize is the eleven u32 words preceding the call peer names
	callFixedSize = 11 * 4

	// DefaultSampleRate is used when a call record does not set one
	DefaultSampleRate uint32 = 48000
)

// DeviceType describes a device inventory record. Its content is whatever
// chunks the caller stored under FieldContent.
func DeviceType() TypeBehavior {
	return TypeBehavior{
		ID:              TypeDevice,
		Name:            "device",
		GenerateContent: callerChunks,
	}
}

// InfoType describes a free-text record. Its content is the UTF-16LE
// encoding of FieldText, or the caller's chunks when FieldContent is set.
func InfoType() TypeBehavior {
	return TypeBehavior{
		ID:   TypeInfo,
		Name: "info",
		GenerateContent: func(info Info) ([][]byte, error) {
			if chunks := info.Chunks(); chunks != nil {
				return chunks, nil
			}
			text, _ := info.String(FieldText)
			if text == "" {
				return nil, nil
			}
			return [][]byte{EncodeText(text)}, nil
		},
	}
}

// CallType describes a call recording. The additional header carries the
// call metadata and the content chunks are the audio samples.
func CallType() TypeBehavior {
	return TypeBehavior{
		ID:                     TypeCall,
		Name:                   "call",
		AdditionalHeader:       encodeCallHeader,
		DecodeAdditionalHeader: decodeCallHeader,
		GenerateContent:        callerChunks,
	}
}

func callerChunks(info Info) ([][]byte, error) {
	return info.Chunks(), nil
}

func encodeCallHeader(info Info) ([]byte, error) {
	start, ok := info.Time(FieldStartTime)
	if !ok {
		start, _ = info.Time(FieldAcquired)
	}
	stop, ok := info.Time(FieldStopTime)
	if !ok {
		stop = start
	}
	if stop.Before(start) {
		return nil, NewValidationError(FieldStopTime, stop, "call stops before it starts")
	}

	sampleRate, ok := info.Uint32(FieldSampleRate)
	if !ok {
		sampleRate = DefaultSampleRate
	}
	channel, _ := info.Uint32(FieldChannel)
	program, _ := info.Uint32(FieldProgram)
	var incoming uint32
	if info.Bool(FieldIncoming) {
		incoming = 1
	}

	callee, _ := info.String(FieldCallee)
	caller, _ := info.String(FieldCaller)
	calleeBytes := EncodeText(callee)
	callerBytes := EncodeText(caller)

	startHigh, startLow := ToFiletime(start)
	stopHigh, stopLow := ToFiletime(stop)

	buf := new(bytes.Buffer)
	words := []uint32{
		CallHeaderVersion,
		channel,
		program,
		sampleRate,
		incoming,
		startHigh, startLow,
		stopHigh, stopLow,
		uint32(len(calleeBytes)),
		uint32(len(callerBytes)),
	}
	if err := binary.Write(buf, binary.LittleEndian, words); err != nil {
		return nil, fmt.Errorf("failed to write call header: %w", err)
	}
	buf.Write(calleeBytes)
	buf.Write(callerBytes)
	return buf.Bytes(), nil
}

func decodeCallHeader(data []byte, info Info) error {
	r := newFrameReader(data, "additional header")

	var words [11]uint32
	for i := range words {
		v, err := r.readUint32()
		if err != nil {
			return err
		}
		words[i] = v
	}

	if words[0] != CallHeaderVersion {
		return &VersionMismatchError{Expected: CallHeaderVersion, Found: words[0]}
	}

	calleeBytes, err := r.readBytes(int(words[9]))
	if err != nil {
		return err
	}
	callerBytes, err := r.readBytes(int(words[10]))
	if err != nil {
		return err
	}

	callee, err := DecodeText(calleeBytes)
	if err != nil {
		return fmt.Errorf("failed to decode callee: %w", err)
	}
	caller, err := DecodeText(callerBytes)
	if err != nil {
		return fmt.Errorf("failed to decode caller: %w", err)
	}

	info[FieldChannel] = words[1]
	info[FieldProgram] = words[2]
	info[FieldSampleRate] = words[3]
	info[FieldIncoming] = words[4] != 0
	info[FieldStartTime] = FromFiletime(words[5], words[6])
	info[FieldStopTime] = FromFiletime(words[7], words[8])
	info[FieldCallee] = callee
	info[FieldCaller] = caller
	return nil
}

// CallDuration returns the length of a parsed or generated call record
func CallDuration(info Info) time.Duration {
	start, ok := info.Time(FieldStartTime)
	if !ok {
		return 0
	}
	stop, ok := info.Time(FieldStopTime)
	if !ok {
		return 0
	}
	return stop.Sub(start)
}
