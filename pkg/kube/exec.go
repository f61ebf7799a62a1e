package kube

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	corev1 "k8s.io/api/core/v1"
	apierrors "k8s.io/apimachinery/pkg/api/errors"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/utils/ptr"

	pferrs "github.com/hashmap-kz/pseudoflow-operator/pkg/errs"
)

// runnerImage is the container image ephemeral exec pods run, overridable
// for air-gapped clusters exactly as the original runtime's RUNNER_IMAGE env
// var was.
var runnerImage = envOr("PSEUDOFLOW_RUNNER_IMAGE", "alpine:3.20")

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// HostMount describes a single hostPath volume mount for a privileged exec
// pod. The configFile and patchFile steps use it to mount the node's root
// filesystem at /host; no step reads mounts from its own fields.
type HostMount struct {
	HostPath  string
	MountPath string
	Type      string
	ReadOnly  bool
}

// ExecSpec parameterizes one ephemeral pod run.
type ExecSpec struct {
	Namespace    string
	Command      string
	NodeSelector map[string]string
	Privileged   bool
	HostMounts   []HostMount
	Timeout      time.Duration
}

// ExecPod creates a short-lived pod that runs Command to completion, returns
// its logs, and deletes it unconditionally on the way out — whether the pod
// succeeded, failed, or the context was cancelled.
//
// Grounded on original_source/pseudoflow/kube/exec.py's
// run_pod_and_get_logs: same naming scheme, same volumes/tolerations/
// security-context shape, same poll-then-fetch-logs sequence, ported from
// the Python client's busy-wait loop to wait.PollUntilContextTimeout.
func (c *Clients) ExecPod(ctx context.Context, spec ExecSpec) (string, error) {
	name := fmt.Sprintf("pseudoflow-exec-%s", uuid.NewString()[:8])
	ns := spec.Namespace
	if ns == "" {
		ns = "default"
	}

	pod := buildExecPod(name, spec)

	if _, err := c.Core.Pods(ns).Create(ctx, pod, metav1.CreateOptions{}); err != nil {
		return "", &pferrs.ClusterApiError{Cause: fmt.Errorf("creating exec pod %s: %w", name, err)}
	}
	defer c.deletePodBestEffort(ns, name)

	timeout := spec.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Minute
	}
	waitCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var lastPhase corev1.PodPhase
	pollErr := wait.PollUntilContextTimeout(waitCtx, 2*time.Second, timeout, true, func(ctx context.Context) (bool, error) {
		p, err := c.Core.Pods(ns).Get(ctx, name, metav1.GetOptions{})
		if err != nil {
			if apierrors.IsNotFound(err) {
				return false, fmt.Errorf("execution pod %s/%s was unexpectedly deleted", ns, name)
			}
			return false, err
		}
		lastPhase = p.Status.Phase
		return lastPhase == corev1.PodSucceeded || lastPhase == corev1.PodFailed, nil
	})

	logs, logErr := c.readPodLogs(ctx, ns, name)

	if pollErr != nil {
		if logErr == nil && lastPhase == corev1.PodFailed {
			return logs, &pferrs.ExecFailed{Logs: logs}
		}
		return logs, &pferrs.TimeoutExpired{Op: "execPod " + name}
	}
	if lastPhase == corev1.PodFailed {
		return logs, &pferrs.ExecFailed{Logs: logs}
	}
	return logs, logErr
}

func (c *Clients) readPodLogs(ctx context.Context, ns, name string) (string, error) {
	req := c.Core.Pods(ns).GetLogs(name, &corev1.PodLogOptions{})
	stream, err := req.Stream(ctx)
	if err != nil {
		return "", err
	}
	defer stream.Close()
	data, err := io.ReadAll(stream)
	return string(data), err
}

func (c *Clients) deletePodBestEffort(ns, name string) {
	_ = c.Core.Pods(ns).Delete(context.Background(), name, metav1.DeleteOptions{
		GracePeriodSeconds: ptr.To(int64(0)),
	})
}

func buildExecPod(name string, spec ExecSpec) *corev1.Pod {
	var volumes []corev1.Volume
	var mounts []corev1.VolumeMount
	for i, hp := range spec.HostMounts {
		vname := fmt.Sprintf("hp%d", i)
		var pathType *corev1.HostPathType
		if hp.Type != "" {
			t := corev1.HostPathType(hp.Type)
			pathType = &t
		}
		volumes = append(volumes, corev1.Volume{
			Name: vname,
			VolumeSource: corev1.VolumeSource{
				HostPath: &corev1.HostPathVolumeSource{Path: hp.HostPath, Type: pathType},
			},
		})
		mounts = append(mounts, corev1.VolumeMount{
			Name:      vname,
			MountPath: hp.MountPath,
			ReadOnly:  hp.ReadOnly,
		})
	}

	var tolerations []corev1.Toleration
	if len(spec.NodeSelector) > 0 {
		tolerations = []corev1.Toleration{{Operator: corev1.TolerationOpExists}}
	}

	var secCtx *corev1.SecurityContext
	if spec.Privileged {
		secCtx = &corev1.SecurityContext{Privileged: ptr.To(true)}
	}

	return &corev1.Pod{
		ObjectMeta: metav1.ObjectMeta{
			Name: name,
			Labels: map[string]string{
				"created-by":             "pseudoflow-operator",
				"pseudoflow.io/component": "exec-runner",
			},
		},
		Spec: corev1.PodSpec{
			RestartPolicy: corev1.RestartPolicyNever,
			NodeSelector:  spec.NodeSelector,
			HostNetwork:   spec.Privileged,
			Tolerations:   tolerations,
			Volumes:       volumes,
			Containers: []corev1.Container{
				{
					Name:            "runner",
					Image:           runnerImage,
					Command:         []string{"/bin/sh", "-lc", spec.Command},
					SecurityContext: secCtx,
					VolumeMounts:    mounts,
				},
			},
		},
	}
}
