package podcast

import (
	"context"
)

// TranscriptSource 根据 URL 获取原文，失败时返回 *RetrievalError。
type TranscriptSource interface {
	Fetch(ctx context.Context, url string) (SourceText, error)
}

// Episode 是一次完整生成的结果。
type Episode struct {
	Script Script
	Audio  []byte
}

// Studio 串联原文获取、脚本生成和音频合成，每次调用都是固定的线性流程。
type Studio struct {
	source    TranscriptSource
	generator *Generator
	assembler *Assembler
}

// NewStudio 创建 Studio。
func NewStudio(source TranscriptSource, generator *Generator, assembler *Assembler) *Studio {
	return &Studio{
		source:    source,
		generator: generator,
		assembler: assembler,
	}
}

// Script 获取原文并生成播客脚本。
func (s *Studio) Script(ctx context.Context, url string) (Script, error) {
	src, err := s.source.Fetch(ctx, url)
	if err != nil {
		return nil, err
	}
	return s.generator.Generate(ctx, src)
}

// Produce 获取原文、生成脚本并合成完整播客音频。
func (s *Studio) Produce(ctx context.Context, url string) (*Episode, error) {
	script, err := s.Script(ctx, url)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, script)
}

// Answer 生成回答听众问题的脚本。
func (s *Studio) Answer(ctx context.Context, question string) (Script, error) {
	return s.generator.GenerateAnswer(ctx, question)
}

// ProduceAnswer 生成回答脚本并合成音频。
func (s *Studio) ProduceAnswer(ctx context.Context, question string) (*Episode, error) {
	script, err := s.Answer(ctx, question)
	if err != nil {
		return nil, err
	}
	return s.assemble(ctx, script)
}

func (s *Studio) assemble(ctx context.Context, script Script) (*Episode, error) {
	audio, err := s.assembler.Assemble(ctx, script)
	if err != nil {
		return nil, err
	}
	return &Episode{Script: script, Audio: audio}, nil
}
