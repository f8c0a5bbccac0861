package firestore

type BulkJob = bulkJob

var AwaitJobs = awaitJobs
