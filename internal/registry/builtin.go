package registry

import "github.com/threatsmith/povforge-cli/api/schemas"

// Built-in schema keys.
const (
	KeyWindowsDefender = "windows_defender"
	KeyAWSCloudTrail   = "aws_cloudtrail"
	KeyCrowdStrike     = "crowdstrike"
	KeyKubernetes      = "kubernetes"
)

// builtinSchemas returns the four seed schemas registered at startup. Sample
// values are illustrative only; they surface as placeholders and hints in
// generated layouts, never in query logic.
func builtinSchemas() map[string]schemas.DatasetSchema {
	return map[string]schemas.DatasetSchema{
		KeyWindowsDefender: {
			Vendor:      "Microsoft",
			DatasetName: "msft_defender_atp_raw",
			Description: "Microsoft Defender for Endpoint advanced hunting telemetry.",
			Category:    schemas.CategoryEndpoint,
			Fields: []schemas.DatasetField{
				{Name: "event_timestamp", Type: "datetime", Description: "Time the event was recorded on the device.", SampleValues: []string{"2024-03-11T09:14:02Z"}, Queryable: true},
				{Name: "device_name", Type: "string", Description: "Fully qualified device name.", SampleValues: []string{"FIN-WS-0142.corp.local"}, Queryable: true},
				{Name: "account_name", Type: "string", Description: "Account that initiated the activity.", SampleValues: []string{"j.doyle", "svc_backup"}, Queryable: true, Role: schemas.RoleUser},
				{Name: "event_type", Type: "string", Description: "Telemetry event class.", SampleValues: []string{"ProcessCreation", "NetworkConnection", "FileCreated"}, Queryable: true},
				{Name: "process_command_line", Type: "string", Description: "Full command line of the created process.", SampleValues: []string{"powershell.exe -nop -enc SQBFAFgA..."}, Queryable: true},
				{Name: "parent_process_name", Type: "string", Description: "Image name of the parent process.", SampleValues: []string{"winword.exe", "explorer.exe"}, Queryable: true},
				{Name: "file_path", Type: "string", Description: "Path of the file the event refers to.", SampleValues: []string{"C:\\Users\\Public\\update.ps1"}, Queryable: true},
				{Name: "sha256", Type: "string", Description: "SHA-256 of the main object of the event.", SampleValues: []string{"a7fd2e8c5b..."}, Queryable: true},
				{Name: "remote_ip", Type: "string", Description: "Remote endpoint of an outbound connection.", SampleValues: []string{"203.0.113.74"}, Queryable: true},
				{Name: "remote_port", Type: "integer", Description: "Remote TCP/UDP port.", SampleValues: []string{"443", "8443"}, Queryable: true},
			},
		},
		KeyAWSCloudTrail: {
			Vendor:      "Amazon Web Services",
			DatasetName: "aws_cloudtrail_raw",
			Description: "AWS CloudTrail management and data events.",
			Category:    schemas.CategoryCloud,
			Fields: []schemas.DatasetField{
				{Name: "timestamp", Type: "datetime", Description: "Time the API call completed.", SampleValues: []string{"2024-03-11T17:41:55Z"}, Queryable: true},
				{Name: "event_name", Type: "string", Description: "Name of the API action.", SampleValues: []string{"AssumeRole", "AttachUserPolicy", "CreateAccessKey"}, Queryable: true},
				{Name: "event_source", Type: "string", Description: "Service endpoint the call was made against.", SampleValues: []string{"iam.amazonaws.com", "sts.amazonaws.com"}, Queryable: true},
				{Name: "user_identity_arn", Type: "string", Description: "ARN of the principal that made the call.", SampleValues: []string{"arn:aws:iam::123456789012:user/deploy-bot"}, Queryable: true},
				{Name: "user_agent", Type: "string", Description: "Client user agent string.", SampleValues: []string{"aws-cli/2.15.0", "Boto3/1.34.11"}, Queryable: true},
				{Name: "source_ip_address", Type: "string", Description: "IP address the request originated from.", SampleValues: []string{"198.51.100.23"}, Queryable: true},
				{Name: "aws_region", Type: "string", Description: "Region the request was made in.", SampleValues: []string{"us-east-1", "eu-west-2"}, Queryable: true},
				{Name: "request_parameters", Type: "string", Description: "JSON-encoded request parameters.", SampleValues: []string{"{\"roleName\":\"admin-role\"}"}, Queryable: false},
				{Name: "error_code", Type: "string", Description: "Error code when the call failed.", SampleValues: []string{"AccessDenied", "ThrottlingException"}, Queryable: true},
			},
		},
		KeyCrowdStrike: {
			Vendor:      "CrowdStrike",
			DatasetName: "crowdstrike_falcon_raw",
			Description: "CrowdStrike Falcon sensor event stream.",
			Category:    schemas.CategoryEndpoint,
			Fields: []schemas.DatasetField{
				{Name: "timestamp", Type: "datetime", Description: "Sensor event time.", SampleValues: []string{"2024-03-11T23:05:17Z"}, Queryable: true},
				{Name: "computer_name", Type: "string", Description: "Hostname reported by the sensor.", SampleValues: []string{"LDN-LT-0877"}, Queryable: true},
				{Name: "user_name", Type: "string", Description: "User in whose session the event occurred.", SampleValues: []string{"agreen"}, Queryable: true},
				{Name: "event_type", Type: "string", Description: "Falcon event simple name.", SampleValues: []string{"ProcessRollup2", "NetworkConnectIP4", "DnsRequest"}, Queryable: true},
				{Name: "command_line", Type: "string", Description: "Command line of the spawned process.", SampleValues: []string{"cmd.exe /c whoami /priv"}, Queryable: true},
				{Name: "parent_process_id", Type: "integer", Description: "Sensor-local ID of the parent process.", SampleValues: []string{"4316"}, Queryable: true},
				{Name: "image_file_name", Type: "string", Description: "Full path of the executed image.", SampleValues: []string{"\\Device\\HarddiskVolume3\\Windows\\System32\\rundll32.exe"}, Queryable: true},
				{Name: "remote_address", Type: "string", Description: "Remote address of a network event.", SampleValues: []string{"192.0.2.199"}, Queryable: true},
				{Name: "platform_name", Type: "string", Description: "Operating system platform.", SampleValues: []string{"Windows", "Mac", "Linux"}, Queryable: true},
			},
		},
		KeyKubernetes: {
			Vendor:      "Kubernetes",
			DatasetName: "k8s_audit_raw",
			Description: "Kubernetes API server audit log.",
			Category:    schemas.CategoryCloud,
			Fields: []schemas.DatasetField{
				{Name: "stage_timestamp", Type: "datetime", Description: "Time the request reached its current audit stage.", SampleValues: []string{"2024-03-12T04:22:40Z"}, Queryable: true},
				{Name: "verb", Type: "string", Description: "Kubernetes API verb.", SampleValues: []string{"create", "delete", "patch"}, Queryable: true},
				{Name: "user_username", Type: "string", Description: "Authenticated user that made the request.", SampleValues: []string{"system:serviceaccount:kube-system:deployer", "jane@corp.io"}, Queryable: true},
				{Name: "user_agent", Type: "string", Description: "Client user agent.", SampleValues: []string{"kubectl/v1.29.2", "helm/3.14"}, Queryable: true},
				{Name: "object_resource", Type: "string", Description: "Resource kind the request targeted.", SampleValues: []string{"pods", "secrets", "clusterrolebindings"}, Queryable: true},
				{Name: "object_namespace", Type: "string", Description: "Namespace of the target object.", SampleValues: []string{"default", "kube-system"}, Queryable: true},
				{Name: "source_ips", Type: "string", Description: "Source addresses of the request chain.", SampleValues: []string{"10.40.2.17"}, Queryable: true},
				{Name: "response_code", Type: "integer", Description: "HTTP status code returned.", SampleValues: []string{"200", "403"}, Queryable: true},
				{Name: "audit_id", Type: "string", Description: "Unique audit event ID.", SampleValues: []string{"5c2e9f04-0d1a-4b2e-9d7e-3f1d2c6b8a90"}, Queryable: false},
			},
		},
	}
}
