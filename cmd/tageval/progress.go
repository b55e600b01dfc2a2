package main

import (
	"github.com/gosuri/uiprogress"
)

// progressBar is an eval.Observer advancing a terminal progress bar.
type progressBar struct {
	p   *uiprogress.Progress
	bar *uiprogress.Bar
}

func startProgress(total int) *progressBar {
	p := uiprogress.New()
	p.Start()
	bar := p.AddBar(total)
	bar.AppendCompleted()
	bar.PrependElapsed()
	return &progressBar{p: p, bar: bar}
}

func (pb *progressBar) SentenceDone(index int, err error) {
	pb.bar.Incr()
}

func (pb *progressBar) Stop() {
	pb.p.Stop()
}
