package version

// Version is the tool version reported in logs and in the HTML report header.
const Version = "1.0.0"
