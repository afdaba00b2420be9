// Package groundtruth delivers approved translation records to the external
// storage collaborator. The sink posts one record set per approved job.
package groundtruth
