package entity

// Per-pod limits assumed for the capacity preview. Requests are half of limits.
const (
	podCPULimitCores = 0.5
	podMemLimitMiB   = 512
)

type ResourceAmount struct {
	Requested float64 `json:"requested"`
	Limit     float64 `json:"limit"`
}

// ResourceEstimate is the aggregate footprint of a workload across replicas.
type ResourceEstimate struct {
	Replicas int            `json:"replicas"`
	CPUCores ResourceAmount `json:"cpu_cores"`
	MemMiB   ResourceAmount `json:"memory_mib"`
}

func EstimateResources(replicas int) ResourceEstimate {
	if replicas < 0 {
		replicas = 0
	}
	n := float64(replicas)
	return ResourceEstimate{
		Replicas: replicas,
		CPUCores: ResourceAmount{
			Requested: n * podCPULimitCores * 0.5,
			Limit:     n * podCPULimitCores,
		},
		MemMiB: ResourceAmount{
			Requested: n * podMemLimitMiB * 0.5,
			Limit:     n * podMemLimitMiB,
		},
	}
}
