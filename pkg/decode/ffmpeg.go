package decode

/*
#cgo pkg-config: libavformat libavcodec libavutil libswscale

#include <stdlib.h>
#include <libavformat/avformat.h>
#include <libavcodec/avcodec.h>
#include <libavutil/imgutils.h>
#include <libswscale/swscale.h>
#include <libavutil/log.h>

typedef struct {
    AVFormatContext *formatCtx;
    AVCodecContext  *codecCtx;
    AVFrame         *frame;
    AVFrame         *frameRGB;
    struct SwsContext *swsCtx;
    int             videoStream;
    uint8_t         *bufferRGB;
    double          timeBase;
} RPDecoder;

// rp_open opens the container and the video decoder and prepares the RGB24
// conversion pipeline. Honours the VIDEO_DECODER env override; otherwise the
// stream's default decoder is used.
static int rp_open(const char *filename, RPDecoder *d) {
    av_log_set_level(AV_LOG_ERROR);
    d->videoStream = -1;

    if (avformat_open_input(&d->formatCtx, filename, NULL, NULL) != 0) {
        return -1;
    }
    if (avformat_find_stream_info(d->formatCtx, NULL) < 0) {
        return -2;
    }

    int stream = av_find_best_stream(d->formatCtx, AVMEDIA_TYPE_VIDEO, -1, -1, NULL, 0);
    if (stream < 0) {
        return -3;
    }
    d->videoStream = stream;

    AVStream *st = d->formatCtx->streams[stream];
    d->timeBase = av_q2d(st->time_base);

    const AVCodec *codec = NULL;
    const char *envDecoder = getenv("VIDEO_DECODER");
    if (envDecoder && envDecoder[0] != '\0') {
        codec = avcodec_find_decoder_by_name(envDecoder);
        if (codec && codec->id != st->codecpar->codec_id) {
            codec = NULL; // requested decoder does not match the stream
        }
    }
    if (!codec) {
        codec = avcodec_find_decoder(st->codecpar->codec_id);
    }
    if (!codec) {
        return -4;
    }

    d->codecCtx = avcodec_alloc_context3(codec);
    if (!d->codecCtx) {
        return -5;
    }
    avcodec_parameters_to_context(d->codecCtx, st->codecpar);
    d->codecCtx->thread_type = FF_THREAD_FRAME;
    d->codecCtx->thread_count = 0;

    if (avcodec_open2(d->codecCtx, codec, NULL) < 0) {
        return -6;
    }

    int width  = d->codecCtx->width;
    int height = d->codecCtx->height;
    if (width <= 0 || height <= 0) {
        return -7;
    }

    d->frame    = av_frame_alloc();
    d->frameRGB = av_frame_alloc();

    int numBytes = av_image_get_buffer_size(AV_PIX_FMT_RGB24, width, height, 1);
    d->bufferRGB = (uint8_t *)av_malloc(numBytes * sizeof(uint8_t));
    av_image_fill_arrays(d->frameRGB->data, d->frameRGB->linesize, d->bufferRGB,
                         AV_PIX_FMT_RGB24, width, height, 1);

    d->swsCtx = sws_getContext(width, height, d->codecCtx->pix_fmt,
                               width, height, AV_PIX_FMT_RGB24,
                               SWS_BILINEAR, NULL, NULL, NULL);
    return 0;
}

// rp_seek jumps to the nearest keyframe at or before the target, in seconds.
// Returns negative on failure; callers treat that as non-fatal.
static int rp_seek(RPDecoder *d, double seconds) {
    if (!d || d->videoStream < 0 || d->timeBase <= 0) {
        return -1;
    }
    int64_t ts = (int64_t)(seconds / d->timeBase);
    int ret = av_seek_frame(d->formatCtx, d->videoStream, ts, AVSEEK_FLAG_BACKWARD);
    if (ret >= 0) {
        avcodec_flush_buffers(d->codecCtx);
    }
    return ret;
}

// rp_read decodes the next frame into the RGB24 buffer and reports its
// presentation timestamp in seconds. Returns 1 on success, 0 on EOF,
// negative on error.
static int rp_read(RPDecoder *d, uint8_t **rgb_data, double *pts) {
    AVPacket packet;
    int ret;

    while (av_read_frame(d->formatCtx, &packet) >= 0) {
        if (packet.stream_index != d->videoStream) {
            av_packet_unref(&packet);
            continue;
        }

        ret = avcodec_send_packet(d->codecCtx, &packet);
        if (ret < 0) {
            av_packet_unref(&packet);
            return -1;
        }
        ret = avcodec_receive_frame(d->codecCtx, d->frame);
        if (ret == AVERROR(EAGAIN) || ret == AVERROR_EOF) {
            av_packet_unref(&packet);
            continue; // decoder needs more data
        } else if (ret < 0) {
            av_packet_unref(&packet);
            return -2;
        }

        sws_scale(d->swsCtx,
                  (const uint8_t * const*)d->frame->data,
                  d->frame->linesize,
                  0,
                  d->codecCtx->height,
                  d->frameRGB->data,
                  d->frameRGB->linesize);

        int64_t raw = d->frame->best_effort_timestamp;
        if (raw == AV_NOPTS_VALUE) {
            raw = d->frame->pts;
        }
        *pts = (raw == AV_NOPTS_VALUE) ? -1.0 : raw * d->timeBase;
        *rgb_data = d->frameRGB->data[0];
        av_packet_unref(&packet);
        return 1;
    }
    return 0; // EOF
}

static double rp_duration(RPDecoder *d) {
    if (!d || !d->formatCtx || d->formatCtx->duration <= 0) {
        return 0;
    }
    return (double)d->formatCtx->duration / AV_TIME_BASE;
}

static double rp_fps(RPDecoder *d) {
    if (!d || d->videoStream < 0) {
        return 0;
    }
    AVStream *st = d->formatCtx->streams[d->videoStream];
    AVRational r = av_guess_frame_rate(d->formatCtx, st, NULL);
    if (r.den == 0) {
        return 0;
    }
    return av_q2d(r);
}

static void rp_close(RPDecoder *d) {
    if (!d) return;
    if (d->swsCtx) sws_freeContext(d->swsCtx);
    av_free(d->bufferRGB);
    av_frame_free(&d->frameRGB);
    av_frame_free(&d->frame);
    avcodec_free_context(&d->codecCtx);
    if (d->formatCtx) {
        avformat_close_input(&d->formatCtx);
    }
}
*/
import "C"

import (
	"fmt"
	"io"
	"unsafe"

	"reelplay/pkg/logging"
	"reelplay/pkg/media"
)

// FFmpegSource decodes a video file through libav. It satisfies Source; one
// instance serves exactly one decode session.
type FFmpegSource struct {
	cdec   C.RPDecoder
	info   StreamInfo
	opened bool

	// lastPTS backs synthetic timestamps for streams without usable PTS.
	lastPTS float64
}

// NewFFmpegSource returns an unopened FFmpeg-backed source.
func NewFFmpegSource() Source {
	return &FFmpegSource{}
}

// Open initialises the decoder, probes dimensions/duration/frame-rate and
// best-effort seeks to startOffset. A failed seek is logged and swallowed.
func (s *FFmpegSource) Open(path string, startOffset float64) (StreamInfo, error) {
	cPath := C.CString(path)
	defer C.free(unsafe.Pointer(cPath))

	if ret := C.rp_open(cPath, &s.cdec); ret != 0 {
		return StreamInfo{}, fmt.Errorf("open %s: decoder init failed (code=%d)", path, int(ret))
	}
	s.opened = true

	s.info = StreamInfo{
		Width:    int(s.cdec.codecCtx.width),
		Height:   int(s.cdec.codecCtx.height),
		Duration: float64(C.rp_duration(&s.cdec)),
		FPS:      float64(C.rp_fps(&s.cdec)),
	}
	if s.info.Width <= 0 || s.info.Height <= 0 {
		s.Close()
		return StreamInfo{}, fmt.Errorf("open %s: invalid dimensions %dx%d", path, s.info.Width, s.info.Height)
	}
	if s.info.FPS <= 0 {
		s.info.FPS = 30 // sensible default when the container does not say
	}

	if startOffset > 0 {
		if ret := C.rp_seek(&s.cdec, C.double(startOffset)); ret < 0 {
			logging.WithComponent("decode").Warn().
				Float64("offset", startOffset).
				Int("code", int(ret)).
				Msg("keyframe seek failed, continuing from current position")
		}
		s.lastPTS = startOffset
	}

	return s.info, nil
}

// ReadFrame decodes the next picture. The returned frame owns a fresh copy
// of the pixel data; the internal conversion buffer is reused.
func (s *FFmpegSource) ReadFrame() (*media.Frame, error) {
	if !s.opened {
		return nil, fmt.Errorf("source not opened")
	}

	var data *C.uint8_t
	var pts C.double
	ret := C.rp_read(&s.cdec, &data, &pts)
	switch {
	case ret == 0:
		return nil, io.EOF
	case ret < 0:
		return nil, fmt.Errorf("decode error (code=%d)", int(ret))
	}

	ts := float64(pts)
	if ts < 0 {
		// No usable PTS; synthesize from the frame counter.
		ts = s.lastPTS + 1.0/s.info.FPS
	}
	s.lastPTS = ts

	bufLen := s.info.Width * s.info.Height * 3
	return &media.Frame{
		Pixels:    C.GoBytes(unsafe.Pointer(data), C.int(bufLen)),
		Width:     s.info.Width,
		Height:    s.info.Height,
		Timestamp: ts,
	}, nil
}

// Close releases the libav contexts. Safe to call on an unopened source.
func (s *FFmpegSource) Close() error {
	if s.opened {
		C.rp_close(&s.cdec)
		s.opened = false
	}
	return nil
}
