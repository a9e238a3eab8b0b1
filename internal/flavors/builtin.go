package flavors

import (
	"github.com/kballard/go-shellquote"
)

// dumpFolder renders the --job.dump_folder override for a subdirectory of
// the output directory.
func dumpFolder(outputDir, sub string) string {
	return DumpFolderFlag + " " + shellquote.Join(outputDir) + "/" + sub + "/"
}

// Builtin returns the flavors run against the stock configs. Every flavor
// dumps into its own subdirectory of outputDir.
func Builtin(outputDir string) Registry {
	return Registry{
		"debug_model.toml": {
			New([][]string{
				{dumpFolder(outputDir, "default")},
			}, "Default"),
			New([][]string{
				{
					"--training.compile",
					dumpFolder(outputDir, "1d_compile"),
				},
			}, "1D compile"),
			New([][]string{
				{
					"--training.tensor_parallel_degree 2 --model.norm_type=rmsnorm",
					dumpFolder(outputDir, "eager_2d"),
				},
			}, "Eager mode 2DParallel"),
			New([][]string{
				{
					"--checkpoint.enable_checkpoint",
					dumpFolder(outputDir, "full_checkpoint"),
				},
				{
					"--checkpoint.enable_checkpoint",
					dumpFolder(outputDir, "full_checkpoint"),
					"--training.steps 20",
				},
			}, "Checkpoint Integration Test - Save Load Full Checkpoint"),
			New([][]string{
				{
					"--checkpoint.enable_checkpoint",
					dumpFolder(outputDir, "model_weights_only_fp32"),
					"--checkpoint.model_weights_only",
				},
			}, "Checkpoint Integration Test - Save Model Weights Only fp32"),
			New([][]string{
				{
					"--checkpoint.enable_checkpoint",
					dumpFolder(outputDir, "model_weights_only_bf16"),
					"--checkpoint.model_weights_only",
					"--checkpoint.export_dtype bfloat16",
				},
			}, "Checkpoint Integration Test - Save Model Weights Only bf16"),
			New([][]string{
				{
					"--checkpoint.enable_checkpoint",
					dumpFolder(outputDir, "pp"),
					"--experimental.pipeline_parallel_degree 2",
					"--experimental.pipeline_parallel_split_points layers.1",
					"--training.data_parallel_degree 1",
					// fused_rmsnorm does not work with PP yet
					"--model.norm_type rmsnorm",
				},
			}, "PP 1D test", WithSeedCheckpoint(), WithNGPU(2)),
			New([][]string{
				{
					"--checkpoint.enable_checkpoint",
					dumpFolder(outputDir, "pp_dp"),
					"--experimental.pipeline_parallel_degree 2",
					"--experimental.pipeline_parallel_split_points layers.1",
					"--training.data_parallel_degree 2",
					"--model.norm_type fused_rmsnorm",
				},
			}, "PP+DP 2D test", WithSeedCheckpoint()),
			New([][]string{
				{
					"--checkpoint.enable_checkpoint",
					dumpFolder(outputDir, "pp_tp"),
					"--experimental.pipeline_parallel_degree 2",
					"--experimental.pipeline_parallel_split_points layers.1",
					"--training.tensor_parallel_degree 2",
					"--model.norm_type rmsnorm",
				},
			}, "PP+TP 2D test", WithSeedCheckpoint()),
			// TODO: add the PP+DP+TP 3D flavor once CI runners have 8 GPUs.
		},
	}
}
