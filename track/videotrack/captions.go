package videotrack

import (
	"time"

	"github.com/zsiec/ccx"
)

// captionDecoder extracts CEA-608/708 closed captions from H.264/H.265 SEI
// payloads attached to decoded frames, mirroring the per-PID decoder maps
// and DTVCC reassembly in the teacher's MPEG-TS demuxer, but driven by one
// frame at a time instead of a transport-stream packet loop.
type captionDecoder struct {
	cea608Decs map[int]*ccx.CEA608Decoder
	cea708Svcs map[int]*ccx.CEA708Service
	dtvccBuf   []byte
}

func newCaptionDecoder() *captionDecoder {
	return &captionDecoder{
		cea708Svcs: map[int]*ccx.CEA708Service{
			1: ccx.NewCEA708Service(),
			2: ccx.NewCEA708Service(),
			3: ccx.NewCEA708Service(),
			4: ccx.NewCEA708Service(),
			5: ccx.NewCEA708Service(),
			6: ccx.NewCEA708Service(),
		},
		cea608Decs: map[int]*ccx.CEA608Decoder{
			1: ccx.NewCEA608Decoder(),
			2: ccx.NewCEA608Decoder(),
			3: ccx.NewCEA608Decoder(),
			4: ccx.NewCEA608Decoder(),
		},
	}
}

func (c *captionDecoder) process(seiData []byte, pts time.Duration, sink CaptionSink) {
	cd := ccx.ExtractCaptions(seiData)
	if cd == nil {
		return
	}

	for _, pair := range cd.CC608Pairs {
		dec := c.cea608Decs[pair.Channel]
		if dec == nil {
			continue
		}
		text := dec.Decode(pair.Data[0], pair.Data[1])
		if text != "" {
			sink.Caption(pts, pair.Channel, text)
		}
	}

	for _, t := range cd.DTVCC {
		if t.Start {
			c.drainDTVCC(pts, sink)
			c.dtvccBuf = c.dtvccBuf[:0]
		}
		c.dtvccBuf = append(c.dtvccBuf, t.Data[0], t.Data[1])
	}
}

func (c *captionDecoder) drainDTVCC(pts time.Duration, sink CaptionSink) {
	if len(c.dtvccBuf) < 1 {
		return
	}
	packetSize := ccx.DTVCCPacketSize(c.dtvccBuf[0])
	if len(c.dtvccBuf) < packetSize {
		return
	}

	for _, block := range ccx.ParseDTVCCPacket(c.dtvccBuf[:packetSize]) {
		svc := c.cea708Svcs[block.ServiceNum]
		if svc == nil {
			continue
		}
		if svc.ProcessBlock(block.Data) {
			text := svc.DisplayText()
			if text != "" {
				sink.Caption(pts, block.ServiceNum+6, text)
			}
		}
	}
}
