package pseudoflow

import (
	"context"
	"fmt"
	"os"

	"github.com/aquasecurity/table"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	"k8s.io/apimachinery/pkg/runtime/schema"
	"k8s.io/cli-runtime/pkg/genericclioptions"
	"k8s.io/cli-runtime/pkg/genericiooptions"
	"k8s.io/client-go/dynamic"
	"sigs.k8s.io/yaml"

	"github.com/hashmap-kz/pseudoflow-operator/pkg/apis/v1alpha1"
)

type describeOptions struct {
	filename  string
	name      string
	namespace string
}

// NewDescribeCmd builds the `describe` subcommand. Given -f it renders a
// flat step table for a local FlowSpec file without touching a cluster;
// given --name it fetches the live PseudoFlow and renders its status
// instead. Exactly one of the two is required.
func NewDescribeCmd(streams genericiooptions.IOStreams) *cobra.Command {
	cfgFlags := genericclioptions.NewConfigFlags(true)
	do := describeOptions{}

	cmd := &cobra.Command{
		Use:   "describe (-f FILE | --name NAME)",
		Short: "Render a PseudoFlow's step plan or its live status as a table",
		Example: `
  # Preview the step plan of a local flow file
  pseudoflow describe -f flow.yaml

  # Show the live status of a PseudoFlow already on the cluster
  pseudoflow describe --name nightly-rollout --namespace ops
`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			switch {
			case do.filename != "":
				return describeFile(do.filename, streams)
			case do.name != "":
				return describeLive(cmd.Context(), cfgFlags, do, streams)
			default:
				return fmt.Errorf("one of --filename/-f or --name is required")
			}
		},
	}

	f := cmd.Flags()
	f.SortFlags = false
	f.StringVarP(&do.filename, "filename", "f", "", "FlowSpec YAML file to preview (no cluster access).")
	f.StringVar(&do.name, "name", "", "Name of a PseudoFlow resource already on the cluster.")
	f.StringVar(&do.namespace, "namespace", "default", "Namespace of the PseudoFlow named by --name.")

	conn := pflag.NewFlagSet("Kubernetes connection flags", pflag.ContinueOnError)
	cfgFlags.AddFlags(conn)
	cmd.Flags().AddFlagSet(conn)

	return cmd
}

func describeFile(filename string, streams genericiooptions.IOStreams) error {
	raw, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("reading flow file: %w", err)
	}
	var spec v1alpha1.FlowSpec
	if err := yaml.Unmarshal(raw, &spec); err != nil {
		return fmt.Errorf("decoding flow spec: %w", err)
	}

	t := table.New(streams.Out)
	t.SetHeaders("#", "Type", "Combinator", "Summary")
	for i, step := range spec.Steps {
		t.AddRow(fmt.Sprintf("%d", i+1), step.Type, yesNo(step.IsCombinator()), stepSummary(step))
	}
	t.Render()
	return nil
}

func describeLive(ctx context.Context, cfgFlags *genericclioptions.ConfigFlags, do describeOptions, streams genericiooptions.IOStreams) error {
	cfg, err := cfgFlags.ToRESTConfig()
	if err != nil {
		return fmt.Errorf("building REST config: %w", err)
	}
	dyn, err := dynamic.NewForConfig(cfg)
	if err != nil {
		return fmt.Errorf("building dynamic client: %w", err)
	}

	gvr := schema.GroupVersionResource{Group: v1alpha1.Group, Version: v1alpha1.Version, Resource: v1alpha1.Plural}
	obj, err := dyn.Resource(gvr).Namespace(do.namespace).Get(ctx, do.name, metav1.GetOptions{})
	if err != nil {
		return fmt.Errorf("fetching %s/%s: %w", do.namespace, do.name, err)
	}

	phase, _, _ := unstructured.NestedString(obj.Object, "status", "phase")
	message, _, _ := unstructured.NestedString(obj.Object, "status", "message")
	observedGen, _, _ := unstructured.NestedInt64(obj.Object, "status", "observedGeneration")

	t := table.New(streams.Out)
	t.SetHeaders("Field", "Value")
	t.AddRow("Name", do.name)
	t.AddRow("Namespace", do.namespace)
	t.AddRow("Phase", phase)
	t.AddRow("ObservedGeneration", fmt.Sprintf("%d", observedGen))
	t.AddRow("Message", message)
	t.Render()

	conditions, found, _ := unstructured.NestedSlice(obj.Object, "status", "conditions")
	if found && len(conditions) > 0 {
		ct := table.New(streams.Out)
		ct.SetHeaders("Type", "Status", "Reason", "Message")
		for _, c := range conditions {
			m, ok := c.(map[string]interface{})
			if !ok {
				continue
			}
			ct.AddRow(fmt.Sprintf("%v", m["type"]), fmt.Sprintf("%v", m["status"]), fmt.Sprintf("%v", m["reason"]), fmt.Sprintf("%v", m["message"]))
		}
		ct.Render()
	}
	return nil
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// stepSummary surfaces the one or two fields a reader most wants to see at
// a glance for each step type; other types get an empty summary.
func stepSummary(step v1alpha1.Step) string {
	switch step.Type {
	case "log":
		return step.GetString("message", "")
	case "apply", "delete", "applyFile", "deleteFile", "include":
		if s := step.GetString("source", ""); s != "" {
			return s
		}
		return step.GetString("path", "")
	case "waitFor":
		res := step.GetStringMap("resource")
		return fmt.Sprintf("%s/%s condition=%s", res["kind"], res["name"], step.GetString("condition", "exist"))
	case "exec":
		return step.GetString("cmd", "")
	case "script":
		return step.GetString("code", "")
	case "if", "when":
		c := step.GetStringMap("condition")
		return fmt.Sprintf("%s %s %s", c["jsonPath"], c["op"], c["value"])
	default:
		return ""
	}
}
