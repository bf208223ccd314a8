package podcast

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/iabetor/stream2pod/internal/logger"
)

// Synthesizer 将单句文本用指定音色合成为音频字节，由 tts 包实现。
// 所有句子的返回格式相同（MP3），可直接拼接。
type Synthesizer interface {
	Synthesize(ctx context.Context, text, voice string) ([]byte, error)
}

// TaskSubmitter 提交异步任务，*ants.Pool 满足该接口。
type TaskSubmitter interface {
	Submit(task func()) error
}

// AssemblerConfig 合成器配置。
type AssemblerConfig struct {
	Voices Voices
	// Timeout 单句合成调用的超时，0 表示不额外限制。
	Timeout time.Duration
	// Pool 为 nil 或 Concurrency <= 1 时严格串行合成。
	Pool TaskSubmitter
	// Concurrency 单个脚本同时进行中的合成调用数上限。
	Concurrency int
}

// Assembler 按脚本顺序合成每句台词并拼接为一段完整音频。
type Assembler struct {
	synth Synthesizer
	cfg   AssemblerConfig
}

// NewAssembler 创建播客音频合成器。
func NewAssembler(synth Synthesizer, cfg AssemblerConfig) *Assembler {
	return &Assembler{synth: synth, cfg: cfg}
}

// Voices 返回合成器使用的两位主持人音色。
func (a *Assembler) Voices() Voices {
	return a.cfg.Voices
}

// Assemble 合成脚本并返回按台词顺序拼接的音频字节。
// 任何一句失败都会终止整个流程并返回 *SynthesisError，不返回部分音频。
func (a *Assembler) Assemble(ctx context.Context, script Script) ([]byte, error) {
	if len(script) == 0 {
		return nil, &EmptyScriptError{}
	}

	start := time.Now()

	var (
		segments [][]byte
		err      error
	)
	if a.cfg.Pool == nil || a.cfg.Concurrency <= 1 || len(script) == 1 {
		segments, err = a.synthesizeSequential(ctx, script)
	} else {
		segments, err = a.synthesizeParallel(ctx, script)
	}
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for i, seg := range segments {
		if len(seg) == 0 {
			return nil, &SynthesisError{Position: i, Voice: a.cfg.Voices.For(i), Err: ErrEmptySegment}
		}
		buf.Write(seg)
	}

	logger.Infof("[podcast] 音频合成完成: %d 句台词, %d 字节, 耗时 %v",
		len(script), buf.Len(), time.Since(start).Round(time.Millisecond))
	return buf.Bytes(), nil
}

func (a *Assembler) synthesizeSequential(ctx context.Context, script Script) ([][]byte, error) {
	segments := make([][]byte, len(script))
	for i, line := range script {
		seg, err := a.synthesizeLine(ctx, i, line.Text)
		if err != nil {
			return nil, err
		}
		segments[i] = seg
	}
	return segments, nil
}

// synthesizeParallel 通过协程池并发合成，结果按位置缓存，全部完成后再按顺序拼接。
// 首个失败会取消其余调用。
func (a *Assembler) synthesizeParallel(ctx context.Context, script Script) ([][]byte, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	segments := make([][]byte, len(script))
	errs := make([]error, len(script))
	slots := make(chan struct{}, a.cfg.Concurrency)

	var wg sync.WaitGroup
submit:
	for i, line := range script {
		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			errs[i] = &SynthesisError{Position: i, Voice: a.cfg.Voices.For(i), Err: ctx.Err()}
			break submit
		}

		wg.Add(1)
		position, text := i, line.Text
		err := a.cfg.Pool.Submit(func() {
			defer wg.Done()
			defer func() { <-slots }()

			seg, err := a.synthesizeLine(ctx, position, text)
			if err != nil {
				errs[position] = err
				cancel()
				return
			}
			segments[position] = seg
		})
		if err != nil {
			wg.Done()
			<-slots
			logger.Warnf("[podcast] 提交合成任务失败: %v", err)
			errs[i] = &SynthesisError{Position: i, Voice: a.cfg.Voices.For(i), Err: err}
			cancel()
			break
		}
	}
	wg.Wait()

	if err := firstFailure(errs); err != nil {
		return nil, err
	}
	return segments, nil
}

// synthesizeLine 合成单句。合成引擎的 panic 记为该句失败：
// 协程池的 panic 处理器只记录日志，不恢复的话该句会被静默丢弃。
func (a *Assembler) synthesizeLine(ctx context.Context, position int, text string) (seg []byte, err error) {
	voice := a.cfg.Voices.For(position)
	defer func() {
		if r := recover(); r != nil {
			seg = nil
			err = &SynthesisError{Position: position, Voice: voice, Err: fmt.Errorf("合成 panic: %v", r)}
		}
	}()

	if err := ctx.Err(); err != nil {
		return nil, &SynthesisError{Position: position, Voice: voice, Err: err}
	}

	if a.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, a.cfg.Timeout)
		defer cancel()
	}

	seg, err = a.synth.Synthesize(ctx, text, voice)
	if err != nil {
		return nil, &SynthesisError{Position: position, Voice: voice, Err: err}
	}
	if len(seg) == 0 {
		return nil, &SynthesisError{Position: position, Voice: voice, Err: ErrEmptySegment}
	}

	logger.Debugf("[podcast] 第 %d 句合成完成 (voice=%s, %d 字节)", position, voice, len(seg))
	return seg, nil
}

// firstFailure 按位置顺序返回第一个真实失败；因取消而失败的句子只在没有其他错误时返回。
func firstFailure(errs []error) error {
	var first error
	for _, err := range errs {
		if err == nil {
			continue
		}
		if first == nil {
			first = err
		}
		if !errors.Is(err, context.Canceled) {
			return err
		}
	}
	return first
}
