package fields

// ocsfCategories is the shipped OCSF field catalogue. Field names follow the
// OCSF attribute dictionary with dotted object paths.
var ocsfCategories = []Category{
	{
		Name:        "activity",
		Label:       "Activity",
		Description: "Event classification and outcome",
		Fields: []Field{
			{Name: "activity_name", Type: TypeString, Description: "Activity name", Examples: []string{"failed_login", "logon", "process_launch"}, Required: true},
			{Name: "activity_id", Type: TypeInteger, Description: "Activity identifier", Examples: []string{"1", "2", "99"}},
			{Name: "class_uid", Type: TypeInteger, Description: "OCSF event class identifier", Examples: []string{"3002", "4001", "1007"}, Required: true},
			{Name: "class_name", Type: TypeString, Description: "OCSF event class name", Examples: []string{"Authentication", "Network Activity"}},
			{Name: "category_uid", Type: TypeInteger, Description: "OCSF category identifier", Examples: []string{"1", "3", "4"}},
			{Name: "severity", Type: TypeString, Description: "Severity level name", Examples: []string{"low", "medium", "high", "critical"}, Required: true},
			{Name: "severity_id", Type: TypeInteger, Description: "Severity level identifier", Examples: []string{"1", "4", "5"}},
			{Name: "status", Type: TypeString, Description: "Outcome of the activity", Examples: []string{"Success", "Failure"}},
			{Name: "status_id", Type: TypeInteger, Description: "Status identifier (1=Success, 2=Failure)", Examples: []string{"1", "2"}},
			{Name: "message", Type: TypeString, Description: "Event message", Examples: []string{"User login failed"}},
		},
	},
	{
		Name:        "time",
		Label:       "Time",
		Description: "When the event happened and was observed",
		Fields: []Field{
			{Name: "time", Type: TypeTimestamp, Description: "Event timestamp", Examples: []string{"2024-01-01T00:00:00Z"}, Required: true},
			{Name: "start_time", Type: TypeTimestamp, Description: "Start of the event window", Examples: []string{"2024-01-01T00:00:00Z"}},
			{Name: "end_time", Type: TypeTimestamp, Description: "End of the event window", Examples: []string{"2024-01-01T01:00:00Z"}},
			{Name: "metadata.logged_time", Type: TypeTimestamp, Description: "Time the event was logged", Examples: []string{"2024-01-01T00:00:05Z"}},
			{Name: "duration", Type: TypeInteger, Description: "Event duration in milliseconds", Examples: []string{"250", "60000"}},
		},
	},
	{
		Name:        "user",
		Label:       "User",
		Description: "Target and acting user identity",
		Fields: []Field{
			{Name: "user.name", Type: TypeString, Description: "Target user name", Examples: []string{"alice", "administrator"}},
			{Name: "user.uid", Type: TypeString, Description: "Target user identifier", Examples: []string{"S-1-5-21-1004", "1001"}},
			{Name: "user.email_addr", Type: TypeEmail, Description: "Target user email", Examples: []string{"alice@example.com"}},
			{Name: "user.domain", Type: TypeString, Description: "Target user domain", Examples: []string{"CORP"}},
			{Name: "user.type", Type: TypeString, Description: "User account type", Examples: []string{"User", "Admin", "System"}},
			{Name: "actor.user.name", Type: TypeString, Description: "Acting user name", Examples: []string{"svc_backup"}},
			{Name: "actor.user.groups", Type: TypeArray, Description: "Groups of the acting user", Examples: []string{"Domain Admins"}},
			{Name: "auth_protocol", Type: TypeString, Description: "Authentication protocol", Examples: []string{"Kerberos", "NTLM", "OAuth 2.0"}},
			{Name: "is_mfa", Type: TypeBoolean, Description: "Whether multi-factor authentication was used", Examples: []string{"true", "false"}},
		},
	},
	{
		Name:        "device",
		Label:       "Device",
		Description: "Host the event was observed on",
		Fields: []Field{
			{Name: "device.hostname", Type: TypeString, Description: "Device hostname", Examples: []string{"ws-0042", "dc01.corp.local"}},
			{Name: "device.ip", Type: TypeIPAddress, Description: "Device IP address", Examples: []string{"10.0.0.12"}},
			{Name: "device.mac", Type: TypeMACAddress, Description: "Device MAC address", Examples: []string{"00:1A:2B:3C:4D:5E"}},
			{Name: "device.type", Type: TypeString, Description: "Device type", Examples: []string{"Server", "Desktop", "Mobile"}},
			{Name: "device.os.name", Type: TypeString, Description: "Operating system name", Examples: []string{"Windows", "Linux"}},
			{Name: "device.uid", Type: TypeString, Description: "Device unique identifier", Examples: []string{"a1b2c3d4"}},
		},
	},
	{
		Name:        "network",
		Label:       "Network",
		Description: "Connection endpoints and traffic",
		Fields: []Field{
			{Name: "src_endpoint.ip", Type: TypeIPAddress, Description: "Source IP address", Examples: []string{"10.0.0.5", "192.168.1.0/24"}},
			{Name: "src_endpoint.port", Type: TypeInteger, Description: "Source port", Examples: []string{"51515"}},
			{Name: "src_endpoint.hostname", Type: TypeString, Description: "Source hostname", Examples: []string{"ws-0042"}},
			{Name: "dst_endpoint.ip", Type: TypeIPAddress, Description: "Destination IP address", Examples: []string{"203.0.113.10"}},
			{Name: "dst_endpoint.port", Type: TypeInteger, Description: "Destination port", Examples: []string{"22", "443", "3389"}},
			{Name: "dst_endpoint.hostname", Type: TypeString, Description: "Destination hostname", Examples: []string{"files.example.com"}},
			{Name: "connection_info.protocol_name", Type: TypeString, Description: "Protocol name", Examples: []string{"TCP", "UDP", "ICMP"}},
			{Name: "connection_info.direction", Type: TypeString, Description: "Connection direction", Examples: []string{"Inbound", "Outbound", "Lateral"}},
			{Name: "traffic.bytes_out", Type: TypeInteger, Description: "Bytes sent", Examples: []string{"1048576"}},
			{Name: "traffic.bytes_in", Type: TypeInteger, Description: "Bytes received", Examples: []string{"2048"}},
		},
	},
	{
		Name:        "file",
		Label:       "File",
		Description: "File system objects",
		Fields: []Field{
			{Name: "file.name", Type: TypeString, Description: "File name", Examples: []string{"invoice.pdf.exe"}},
			{Name: "file.path", Type: TypeString, Description: "File path", Examples: []string{"C:\\Users\\Public\\payload.dll"}},
			{Name: "file.size", Type: TypeInteger, Description: "File size in bytes", Examples: []string{"4096"}},
			{Name: "file.hashes.sha256", Type: TypeString, Description: "SHA-256 digest", Examples: []string{"e3b0c44298fc1c149afbf4c8996fb92427ae41e4649b934ca495991b7852b855"}},
			{Name: "file.modified_time", Type: TypeTimestamp, Description: "Last modified time", Examples: []string{"2024-01-01T00:00:00Z"}},
		},
	},
	{
		Name:        "process",
		Label:       "Process",
		Description: "Process execution",
		Fields: []Field{
			{Name: "process.name", Type: TypeString, Description: "Process name", Examples: []string{"powershell.exe", "cmd.exe"}},
			{Name: "process.pid", Type: TypeInteger, Description: "Process ID", Examples: []string{"4242"}},
			{Name: "process.cmd_line", Type: TypeString, Description: "Command line", Examples: []string{"powershell -enc ..."}},
			{Name: "process.parent_process.name", Type: TypeString, Description: "Parent process name", Examples: []string{"winword.exe"}},
			{Name: "process.user.name", Type: TypeString, Description: "User the process runs as", Examples: []string{"SYSTEM"}},
			{Name: "process.integrity", Type: TypeString, Description: "Process integrity level", Examples: []string{"High", "System"}},
		},
	},
	{
		Name:        "registry",
		Label:       "Registry",
		Description: "Windows registry keys and values",
		Fields: []Field{
			{Name: "reg_key.path", Type: TypeString, Description: "Registry key path", Examples: []string{"HKLM\\Software\\Microsoft\\Windows\\CurrentVersion\\Run"}},
			{Name: "reg_value.name", Type: TypeString, Description: "Registry value name", Examples: []string{"Updater"}},
			{Name: "reg_value.data", Type: TypeString, Description: "Registry value data", Examples: []string{"C:\\ProgramData\\updater.exe"}},
		},
	},
	{
		Name:        "cloud",
		Label:       "Cloud",
		Description: "Cloud provider context",
		Fields: []Field{
			{Name: "cloud.provider", Type: TypeString, Description: "Cloud provider", Examples: []string{"AWS", "Azure", "GCP"}},
			{Name: "cloud.region", Type: TypeString, Description: "Cloud region", Examples: []string{"us-east-1"}},
			{Name: "cloud.account.uid", Type: TypeString, Description: "Cloud account identifier", Examples: []string{"123456789012"}},
			{Name: "api.operation", Type: TypeString, Description: "API operation invoked", Examples: []string{"PutBucketPolicy", "CreateAccessKey"}},
			{Name: "resources", Type: TypeJSON, Description: "Affected cloud resources"},
		},
	},
	{
		Name:        "email",
		Label:       "Email",
		Description: "Email messages",
		Fields: []Field{
			{Name: "email.from", Type: TypeEmail, Description: "Sender address", Examples: []string{"billing@examp1e.com"}},
			{Name: "email.to", Type: TypeArray, Description: "Recipient addresses", Examples: []string{"alice@example.com"}},
			{Name: "email.subject", Type: TypeString, Description: "Message subject", Examples: []string{"Invoice overdue"}},
			{Name: "email.x_originating_ip", Type: TypeIPAddress, Description: "Originating IP", Examples: []string{"198.51.100.7"}},
			{Name: "email.urls", Type: TypeArray, Description: "URLs found in the message body", Examples: []string{"http://login.examp1e.com"}},
		},
	},
	{
		Name:        "dns",
		Label:       "DNS",
		Description: "DNS queries and answers",
		Fields: []Field{
			{Name: "query.hostname", Type: TypeString, Description: "DNS query hostname", Examples: []string{"updates.example.net"}},
			{Name: "query.type", Type: TypeString, Description: "DNS query type", Examples: []string{"A", "TXT", "AAAA"}},
			{Name: "rcode", Type: TypeString, Description: "DNS response code", Examples: []string{"NoError", "NXDomain"}},
			{Name: "answers", Type: TypeArray, Description: "DNS answers", Examples: []string{"203.0.113.10"}},
		},
	},
	{
		Name:        "http",
		Label:       "HTTP",
		Description: "HTTP requests and responses",
		Fields: []Field{
			{Name: "http_request.url", Type: TypeURL, Description: "Request URL", Examples: []string{"https://app.example.com/login"}},
			{Name: "http_request.http_method", Type: TypeString, Description: "Request method", Examples: []string{"GET", "POST"}},
			{Name: "http_request.user_agent", Type: TypeString, Description: "User agent", Examples: []string{"sqlmap/1.7"}},
			{Name: "http_response.code", Type: TypeInteger, Description: "Response status code", Examples: []string{"200", "403", "500"}},
			{Name: "http_request.headers", Type: TypeObject, Description: "Request headers"},
		},
	},
	{
		Name:        "vulnerability",
		Label:       "Vulnerability",
		Description: "Vulnerability findings",
		Fields: []Field{
			{Name: "vulnerability.cve.uid", Type: TypeString, Description: "CVE identifier", Examples: []string{"CVE-2024-3094"}},
			{Name: "vulnerability.severity", Type: TypeString, Description: "Vulnerability severity", Examples: []string{"High", "Critical"}},
			{Name: "vulnerability.cvss.base_score", Type: TypeFloat, Description: "CVSS base score", Examples: []string{"9.8"}},
			{Name: "vulnerability.is_exploit_available", Type: TypeBoolean, Description: "Whether a public exploit exists", Examples: []string{"true"}},
		},
	},
	{
		Name:        "system",
		Label:       "System",
		Description: "Product and log source metadata",
		Fields: []Field{
			{Name: "metadata.product.name", Type: TypeString, Description: "Product name", Examples: []string{"Sysmon", "CloudTrail"}},
			{Name: "metadata.product.vendor_name", Type: TypeString, Description: "Vendor name", Examples: []string{"Microsoft", "AWS"}},
			{Name: "metadata.version", Type: TypeString, Description: "OCSF schema version", Examples: []string{"1.1.0"}},
			{Name: "metadata.log_name", Type: TypeString, Description: "Log source name", Examples: []string{"Security"}},
			{Name: "raw_data", Type: TypeJSON, Description: "Original event payload"},
		},
	},
	{
		Name:        "incident",
		Label:       "Incident",
		Description: "Findings and ATT&CK context",
		Fields: []Field{
			{Name: "finding.title", Type: TypeString, Description: "Finding title", Examples: []string{"Brute force detected"}},
			{Name: "finding.uid", Type: TypeString, Description: "Finding identifier", Examples: []string{"F-2024-0001"}},
			{Name: "attack_tactic", Type: TypeString, Description: "MITRE ATT&CK tactic", Examples: []string{"Credential Access", "Lateral Movement"}},
			{Name: "attack_technique_uid", Type: TypeString, Description: "MITRE ATT&CK technique UID", Examples: []string{"T1110", "T1021"}},
			{Name: "risk_score", Type: TypeInteger, Description: "Risk score (0-100)", Examples: []string{"85"}},
			{Name: "observables", Type: TypeArray, Description: "Indicators of compromise attached to the event", Examples: []string{"203.0.113.10"}},
		},
	},
}
