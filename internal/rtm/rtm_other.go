//go:build !amd64

package rtm

func detect() bool { return false }

func xbegin() uint32 { return 0 }

func xend() {}

func xtest() bool { return false }
