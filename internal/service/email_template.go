package service

import "market-tips/internal/dto"

type digestView struct {
	Label       string
	Tips        []dto.TradingTip
	MarketData  []dto.MarketData
	GeneratedAt string
}

const digestTemplate = `<html>
<head>
<style>
body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
.container { max-width: 600px; margin: 0 auto; padding: 20px; }
.header { background-color: #2c3e50; color: white; padding: 20px; border-radius: 5px; margin-bottom: 20px; }
.tip { background-color: #f8f9fa; border-left: 4px solid #007bff; padding: 15px; margin-bottom: 15px; border-radius: 3px; }
.tip-header { font-weight: bold; font-size: 16px; margin-bottom: 8px; }
.recommendation { font-weight: bold; padding: 5px 10px; border-radius: 3px; display: inline-block; margin-bottom: 8px; }
.buy { background-color: #d4edda; color: #155724; }
.sell { background-color: #f8d7da; color: #721c24; }
.hold { background-color: #fff3cd; color: #856404; }
.reasoning { margin: 10px 0; font-style: italic; }
.indicators { margin: 10px 0; font-size: 14px; }
.source { font-size: 12px; color: #666; margin-top: 8px; }
.market-data { background-color: #f8f9fa; padding: 15px; margin-bottom: 15px; border-radius: 3px; }
.footer { text-align: center; font-size: 12px; color: #666; margin-top: 30px; border-top: 1px solid #ddd; padding-top: 20px; }
</style>
</head>
<body>
<div class="container">
<div class="header">
<h1>{{.Label}} Market Tips</h1>
<p>Expert-analyzed trading recommendations for your portfolio</p>
</div>
{{if .Tips}}<h2>Trading Tips</h2>
{{range .Tips}}<div class="tip">
<div class="tip-header">{{.Symbol}} ({{upper (printf "%s" .AssetType)}})</div>
<div class="recommendation {{lower (printf "%s" .Recommendation)}}">{{.Recommendation}}</div>
<div class="reasoning"><strong>Analysis:</strong> {{.Reasoning}}</div>
<div class="indicators"><strong>Indicators:</strong> {{join .Indicators ", "}}</div>
<div class="source">
<strong>Sources:</strong>
{{range .Sources}}<br><a href="{{.URL}}">{{.Name}}</a>{{end}}
<br><strong>Confidence:</strong> {{.Confidence}}%
</div>
</div>
{{end}}{{end}}
{{if .MarketData}}<h2>Market Data</h2>
{{range .MarketData}}<div class="market-data">
<strong>{{.Symbol}} ({{upper (printf "%s" .AssetType)}})</strong><br>
<strong>Current Price:</strong> ${{price .CurrentPrice}}<br>
<strong>24h Change:</strong> {{change .PriceChange24h}}%<br>
<strong>24h Volume:</strong> ${{volume .Volume24h}}<br>
<strong>Source:</strong> <a href="{{.Source.URL}}">{{.Source.Name}}</a>
</div>
{{end}}{{end}}
<div class="footer">
<p>This is an automated message from Daily Market Tips.</p>
<p>Generated at {{.GeneratedAt}} UTC</p>
</div>
</div>
</body>
</html>
`
