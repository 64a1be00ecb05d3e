// Package recon exposes reconciliation jobs over HTTP.
//
// # Routes
//
//   - GET  /recon/jobs: names of the jobs in the jobs directory.
//   - GET  /recon/jobs/:name: the parsed job definition.
//   - POST /recon/jobs/:name/run: loads both sources, runs the job and returns
//     the JSON report. ?format=text returns the plain summary instead and
//     ?upload=true stores the report in the report bucket.
//   - GET  /recon/reports/:name: reports uploaded for a job.
//
// A run that finds failing checks still answers 200; failures are part of
// the report. Unknown jobs are 404, invalid jobs 400, jobs that do not fit
// their data 422 and source failures 500.
package recon
