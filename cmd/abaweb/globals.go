package main

import (
	"github.com/carbocation/brainatlas/atlas"
)

type Global struct {
	log   logger
	atlas *atlas.Atlas

	Site string
}

type logger interface {
	Print(v ...interface{})
	Printf(format string, v ...interface{})
	Println(v ...interface{})
}
