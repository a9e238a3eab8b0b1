// Package integration drives the training integration tests.
//
// The driver walks a directory of TOML training configs, keeps the ones
// flagged with job.use_for_integration_test, and for every flavor registered
// for the file launches the training script once per override group:
//
//	CONFIG_FILE=<config> NGPU=<n> LOG_RANK=0,1,2,3 ./run_llama_train.sh <overrides...>
//
// Flavors that need a seed checkpoint get ./create_seed_checkpoint.sh run
// against the group's --job.dump_folder before each invocation. The first
// failing invocation stops the whole run.
package integration
