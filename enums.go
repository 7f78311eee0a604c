package main

//go:generate go run github.com/dmarkham/enumer -output enums_generated.go -type TLSmode enums.go

type TLSmode byte

const (
	TLS      TLSmode = 0
	StartTLS TLSmode = 1
	NoTLS    TLSmode = 2
)
