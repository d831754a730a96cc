package cloud

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strings"

	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/rest"

	"github.com/czerwonk/hostaddr_exporter/network"
)

const K8sPod = "k8s:pod"

const serviceAccountNamespace = "/var/run/secrets/kubernetes.io/serviceaccount/namespace"

// K8sResolver resolves the IP of the pod this process runs in. The pod is
// identified by POD_NAME and POD_NAMESPACE, falling back to the host name
// and the service account namespace.
type K8sResolver struct {
	clientset kubernetes.Interface
	podName   string
	namespace string
}

func NewK8sResolver() (*K8sResolver, error) {
	config, err := rest.InClusterConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to create in-cluster config: %w", err)
	}
	clientset, err := kubernetes.NewForConfig(config)
	if err != nil {
		return nil, fmt.Errorf("failed to create Kubernetes client: %w", err)
	}

	podName := os.Getenv("POD_NAME")
	if podName == "" {
		podName, err = os.Hostname()
		if err != nil {
			return nil, fmt.Errorf("failed to determine pod name: %w", err)
		}
	}

	namespace := os.Getenv("POD_NAMESPACE")
	if namespace == "" {
		b, err := os.ReadFile(serviceAccountNamespace)
		if err != nil {
			return nil, fmt.Errorf("failed to determine pod namespace: %w", err)
		}
		namespace = strings.TrimSpace(string(b))
	}

	return newK8sResolver(clientset, podName, namespace), nil
}

func newK8sResolver(clientset kubernetes.Interface, podName, namespace string) *K8sResolver {
	return &K8sResolver{clientset: clientset, podName: podName, namespace: namespace}
}

// Register adds #k8s:pod# to svc.
func (r *K8sResolver) Register(svc *network.Service) {
	svc.AddCustomNameResolver(K8sPod, network.CustomNameResolverFunc(r.Resolve))
}

func (r *K8sResolver) Resolve(ctx context.Context) (net.IP, error) {
	pod, err := r.clientset.CoreV1().Pods(r.namespace).Get(ctx, r.podName, metav1.GetOptions{})
	if err != nil {
		return nil, fmt.Errorf("failed to get pod %s in namespace %s: %w", r.podName, r.namespace, err)
	}

	if pod.Status.PodIP == "" {
		return nil, errors.New("pod has no ip address assigned yet")
	}

	return parseIP("pod status", pod.Status.PodIP)
}
