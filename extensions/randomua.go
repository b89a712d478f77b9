package extensions

import (
	"fmt"
	"math/rand"
)

var ffVersions = []float32{
	115.0, 118.0, 120.0, 121.0, 122.0, 123.0, 124.0, 125.0,
}

var chromeVersions = []string{
	"118.0.5993.117",
	"119.0.6045.199",
	"120.0.6099.224",
	"121.0.6167.184",
	"122.0.6261.128",
	"123.0.6312.122",
	"124.0.6367.207",
	"125.0.6422.141",
}

var osStrings = []string{
	"Macintosh; Intel Mac OS X 10_15_7",
	"Windows NT 10.0; Win64; x64",
	"X11; Linux x86_64",
	"X11; Ubuntu; Linux x86_64",
}

func genFirefoxUA() string {
	version := ffVersions[rand.Intn(len(ffVersions))]
	os := osStrings[rand.Intn(len(osStrings))]
	return fmt.Sprintf("Mozilla/5.0 (%s; rv:%.1f) Gecko/20100101 Firefox/%.1f", os, version, version)
}

func genChromeUA() string {
	version := chromeVersions[rand.Intn(len(chromeVersions))]
	os := osStrings[rand.Intn(len(osStrings))]
	return fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%s Safari/537.36", os, version)
}

// 随机生成一个浏览器的User-Agent，降低被目标站点识别为爬虫的概率
func GenerateRandomUA() string {
	if rand.Intn(2) == 0 {
		return genFirefoxUA()
	}
	return genChromeUA()
}
