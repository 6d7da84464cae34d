package ports

// InflightGuard tracks which endpoints currently have an invocation running.
type InflightGuard interface {
	TryAcquire(endpoint string) bool
	Release(endpoint string)
	Len() int
}
