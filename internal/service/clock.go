package service

import "time"

// Clock 提供服务端权威时间
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now().UTC() }

// SystemClock 返回基于系统时间的 Clock
func SystemClock() Clock { return systemClock{} }
